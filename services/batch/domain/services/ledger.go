// Package services contains stateless domain services for the batch bounded context.
// They operate purely on domain types: balance replay, ledger authorization,
// trust scoring and the integrity digest.
package services

import (
	"fmt"
	"time"

	"github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// AvailableUnits replays the event log and returns the units p currently controls.
//
// Only an event naming p as source reduces p's count; REGISTERED credits the
// registrant with TotalUnits. Parties are canonical, so plain equality is a
// case-insensitive match.
func AvailableUnits(b *models.Batch, p models.Party) int {
	var received, transferredOut, sold int
	for _, e := range b.Events {
		switch e.Kind {
		case models.EventRegistered:
			if e.Recipient == p {
				received += b.TotalUnits
			}
		case models.EventTransferred:
			if e.Recipient == p {
				received += e.Units
			}
			if e.SourceParty == p {
				transferredOut += e.Units
			}
		case models.EventPurchased:
			if e.SourceParty == p {
				sold += e.Units
			}
		}
	}
	return received - transferredOut - sold
}

// Balances returns the available units of every supply-chain party that has
// appeared as a recipient or source in the log. Customers are not included.
func Balances(b *models.Batch) map[models.Party]int {
	out := make(map[models.Party]int)
	for _, e := range b.Events {
		switch e.Kind {
		case models.EventRegistered, models.EventTransferred:
			out[e.Recipient] = 0
			if e.SourceParty != "" {
				out[e.SourceParty] = 0
			}
		case models.EventPurchased:
			out[e.SourceParty] = 0
		}
	}
	for p := range out {
		out[p] = AvailableUnits(b, p)
	}
	return out
}

// UnitsSold is the total number of units that left the supply chain through sales.
func UnitsSold(b *models.Batch) int {
	var n int
	for _, e := range b.Events {
		if e.Kind == models.EventPurchased {
			n += e.Units
		}
	}
	return n
}

// Registration carries the descriptive data of a new batch.
type Registration struct {
	BatchID         string
	Name            string
	ProducerName    string
	ManufactureDate time.Time
	ExpiryDate      time.Time
	TotalUnits      int
}

// Register creates a new batch credited to actor. Uniqueness of the batch ID
// is enforced by the store, not here.
func Register(r Registration, actor models.Principal, now time.Time) (*models.Batch, error) {
	if !canRegister(actor.Role) {
		return nil, fmt.Errorf("%w: %s may not register batches", domain.ErrRoleNotPermitted, actor.Role)
	}
	if r.TotalUnits < models.MinTotalUnits || r.TotalUnits > models.MaxTotalUnits {
		return nil, fmt.Errorf("%w: total units %d outside %d..%d", domain.ErrInvalidUnitCount, r.TotalUnits, models.MinTotalUnits, models.MaxTotalUnits)
	}
	id, err := models.NewBatchID(r.BatchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidBatch, err)
	}
	b, err := models.NewBatch(id, r.Name, r.ProducerName, r.ManufactureDate, r.ExpiryDate, r.TotalUnits, actor.Party, actor.Role, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidBatch, err)
	}
	return b, nil
}

// Transfer authorizes and appends a TRANSFERRED event. On error b is unchanged.
func Transfer(b *models.Batch, actor models.Principal, recipient models.Party, recipientRole models.Role, units int, now time.Time) (models.LedgerEvent, error) {
	if units < 1 {
		return models.LedgerEvent{}, fmt.Errorf("%w: units must be at least 1, got %d", domain.ErrInvalidUnitCount, units)
	}
	if recipient == "" || recipient == models.UnknownCustomer {
		return models.LedgerEvent{}, fmt.Errorf("%w: recipient is required", domain.ErrInvalidParty)
	}
	if recipient == actor.Party {
		return models.LedgerEvent{}, fmt.Errorf("%w: cannot transfer to yourself", domain.ErrInvalidParty)
	}
	if !canHoldStock(actor.Role) {
		return models.LedgerEvent{}, fmt.Errorf("%w: %s may not transfer units", domain.ErrRoleNotPermitted, actor.Role)
	}
	if !canHoldStock(recipientRole) {
		return models.LedgerEvent{}, fmt.Errorf("%w: cannot transfer to a %s", domain.ErrRoleNotPermitted, recipientRole)
	}
	if err := authorizeDebit(b, actor.Party, units); err != nil {
		return models.LedgerEvent{}, err
	}

	return b.Append(models.LedgerEvent{
		Kind:          models.EventTransferred,
		SourceParty:   actor.Party,
		Recipient:     recipient,
		RecipientRole: recipientRole,
		Units:         units,
		Timestamp:     now,
	}), nil
}

// Sell authorizes and appends a PURCHASED event. An empty customer is recorded
// as UnknownCustomer. When the registrant's own balance reaches zero the batch
// becomes SOLD_OUT; depletion of any other holder leaves the status alone.
func Sell(b *models.Batch, actor models.Principal, customer models.Party, units int, now time.Time) (models.LedgerEvent, error) {
	if units < 1 {
		return models.LedgerEvent{}, fmt.Errorf("%w: units must be at least 1, got %d", domain.ErrInvalidUnitCount, units)
	}
	if !canHoldStock(actor.Role) {
		return models.LedgerEvent{}, fmt.Errorf("%w: %s may not sell units", domain.ErrRoleNotPermitted, actor.Role)
	}
	if customer == "" {
		customer = models.UnknownCustomer
	}
	if err := authorizeDebit(b, actor.Party, units); err != nil {
		return models.LedgerEvent{}, err
	}

	e := b.Append(models.LedgerEvent{
		Kind:          models.EventPurchased,
		SourceParty:   actor.Party,
		Recipient:     customer,
		RecipientRole: models.RoleCustomer,
		Units:         units,
		Timestamp:     now,
	})
	if actor.Party == b.Registrant && AvailableUnits(b, actor.Party) == 0 {
		b.MarkSoldOut()
	}
	return e, nil
}

// Block freezes all further ledger operations on b. Only admins may block.
// It reports whether the status changed.
func Block(b *models.Batch, actor models.Principal, now time.Time) (bool, error) {
	if !canBlock(actor.Role) {
		return false, fmt.Errorf("%w: %s may not block batches", domain.ErrRoleNotPermitted, actor.Role)
	}
	if b.Status == models.StatusBlocked {
		return false, nil
	}
	b.Block(now)
	return true, nil
}

func authorizeDebit(b *models.Batch, actor models.Party, units int) error {
	if !b.IsActive() {
		return fmt.Errorf("%w: batch %s is %s", domain.ErrBatchNotActive, b.ID, b.Status)
	}
	available := AvailableUnits(b, actor)
	if available <= 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnauthorizedActor, actor)
	}
	if available < units {
		return &domain.InsufficientBalanceError{Available: available, Requested: units}
	}
	return nil
}

func canRegister(r models.Role) bool {
	switch r {
	case models.RoleManufacturer:
		return true
	case models.RoleDistributor, models.RolePharmacy, models.RoleCustomer, models.RoleAdmin:
		return false
	default:
		return false
	}
}

func canHoldStock(r models.Role) bool {
	switch r {
	case models.RoleManufacturer, models.RoleDistributor, models.RolePharmacy:
		return true
	case models.RoleCustomer, models.RoleAdmin:
		return false
	default:
		return false
	}
}

func canBlock(r models.Role) bool {
	switch r {
	case models.RoleAdmin:
		return true
	case models.RoleManufacturer, models.RoleDistributor, models.RolePharmacy, models.RoleCustomer:
		return false
	default:
		return false
	}
}

// HasOversight reports whether p may issue codes for b and read its scan
// history: the registrant and admins.
func HasOversight(b *models.Batch, p models.Principal) bool {
	return p.Role == models.RoleAdmin || p.Party == b.Registrant
}
