// Package export copies registration and profile data to an external store.
package export

import (
	"context"
	"log"
	"time"

	"legalflow/internal/model"
)

// Row is one registration record as exported.
type Row struct {
	Email               string    `bson:"email"`
	RegisteredAt        time.Time `bson:"registeredAt"`
	ConsentPersonalData bool      `bson:"consentPersonalData"`
	ConsentMarketing    bool      `bson:"consentMarketing"`
	Name                string    `bson:"name"`
	Company             string    `bson:"company"`
	Position            string    `bson:"position"`
	Phone               string    `bson:"phone"`
	Industry            string    `bson:"industry"`
	Employees           string    `bson:"employees"`
	UpdatedAt           time.Time `bson:"updatedAt"`
}

// RowFromUser flattens a user and its profile.
func RowFromUser(u *model.User, at time.Time) Row {
	return Row{
		Email:               u.Email,
		RegisteredAt:        u.RegisteredAt,
		ConsentPersonalData: u.ConsentPersonalData,
		ConsentMarketing:    u.ConsentMarketing,
		Name:                u.Profile.Name,
		Company:             u.Profile.Company,
		Position:            u.Profile.Position,
		Phone:               u.Profile.Phone,
		Industry:            u.Profile.Industry,
		Employees:           u.Profile.Employees,
		UpdatedAt:           at,
	}
}

// Sink stores exported rows.
type Sink interface {
	Append(ctx context.Context, row Row) error
}

// Noop discards rows.
type Noop struct{}

func (Noop) Append(context.Context, Row) error { return nil }

// Dispatcher sends rows in the background. Export failures never reach the caller.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	done    func()
}

// NewDispatcher creates a dispatcher that bounds every export by timeout.
func NewDispatcher(sink Sink, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sink: sink, timeout: timeout}
}

// Send exports row on a new goroutine and returns immediately.
func (d *Dispatcher) Send(row Row) {
	go func() {
		if d.done != nil {
			defer d.done()
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sink.Append(ctx, row); err != nil {
			log.Printf("[Export] WARNING: failed to export %s: %v", row.Email, err)
			return
		}
		log.Printf("[Export] Exported %s", row.Email)
	}()
}
