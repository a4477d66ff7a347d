package notify

import (
	"context"
	"fmt"
	"log"
)

// Event é o evento de domínio entregue à contraparte após cada
// transição já commitada.
type Event struct {
	UserRef string // "professional:12" ou "patient:7"
	Type    string
	Payload map[string]any
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Dispatcher desacopla a transição de estado da entrega: fila em
// memória consumida por um worker. Falha ou fila cheia nunca reverte
// nem bloqueia a transição que originou o evento.
type Dispatcher struct {
	notifier Notifier
	queue    chan Event
}

func NewDispatcher(notifier Notifier) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		queue:    make(chan Event, 100), // buffer seguro
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	ctx := context.Background()
	for ev := range d.queue {
		if err := d.notifier.Notify(ctx, ev); err != nil {
			log.Println("notify error:", err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	select {
	case d.queue <- ev:
		// enviado
	default:
		// fila cheia → descartamos a notificação (nunca quebrar API)
		log.Println("notify queue full, dropping event")
	}
}

func UserRef(role string, id uint) string {
	return fmt.Sprintf("%s:%d", role, id)
}
