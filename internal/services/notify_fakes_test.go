package services

import (
	"context"
	"errors"
	"sync"

	"eventhub/internal/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TicketEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt domain.TicketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingEmailService struct {
	confirmations []*domain.TicketEmailData
	cancellations []*domain.TicketEmailData
	err           error
}

func (s *recordingEmailService) SendTicketConfirmation(ctx context.Context, data *domain.TicketEmailData) error {
	if s.err != nil {
		return s.err
	}
	s.confirmations = append(s.confirmations, data)
	return nil
}

func (s *recordingEmailService) SendTicketCancellation(ctx context.Context, data *domain.TicketEmailData) error {
	if s.err != nil {
		return s.err
	}
	s.cancellations = append(s.cancellations, data)
	return nil
}

var errNotifyDown = errors.New("notifier down")
