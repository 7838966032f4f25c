package guest

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrIDRequired   = errors.New("guest: id is required")
	ErrNameRequired = errors.New("name is required and must be a valid string")
	ErrNotFound     = errors.New("guest not found")
)

const minNameLength = 2

type ID string

// Guest is a person who can hold bookings.
type Guest struct {
	ID        ID
	Name      string
	CreatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Guest, error)
	Save(ctx context.Context, guest *Guest) error
}

type CreateParams struct {
	ID        ID
	Name      string
	CreatedAt time.Time
}

func New(params CreateParams) (*Guest, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if utf8.RuneCountInString(name) < minNameLength {
		return nil, ErrNameRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	g := &Guest{ID: ID(id), Name: name, CreatedAt: now.UTC()}
	return g, nil
}

// Registered builds the event announcing a new guest.
func (g *Guest) Registered() Registered {
	return Registered{GuestID: g.ID, Name: g.Name, At: g.CreatedAt}
}

type Registered struct {
	GuestID ID        `json:"guest_id"`
	Name    string    `json:"name"`
	At      time.Time `json:"at"`
}

func (e Registered) EventName() string     { return "guest.registered" }
func (e Registered) AggregateID() string   { return string(e.GuestID) }
func (e Registered) OccurredAt() time.Time { return e.At }
