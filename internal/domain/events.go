package domain

// Event is implemented by every domain event recorded in the event store.
type Event interface {
	EventName() string
}

// Polarity states how a money-movement event changes an account balance.
type Polarity int

const (
	PolarityIncrease Polarity = iota + 1
	PolarityDecrease
)

// MoneyMovement is implemented by events that move money. The replay fold is
// generic over this interface: increase events add to the balance, decrease
// events subtract. Events that do not implement it have no balance effect.
type MoneyMovement interface {
	Event
	MovementAmount() int64
	MovementPolarity() Polarity
}

// Correlated is implemented by events that belong to one transfer. The event
// bus routes them to the coordinator instance keyed by the returned id.
type Correlated interface {
	Event
	CorrelationID() string
}

// Account event names.
const (
	EventAccountCreated        = "account.created"
	EventMoneyDeposited        = "account.money_deposited"
	EventMoneyWithdrawn        = "account.money_withdrawn"
	EventSourceDebited         = "account.source_debited"
	EventSourceDebitRejected   = "account.source_debit_rejected"
	EventSourceNotFound        = "account.source_not_found"
	EventDestinationCredited   = "account.destination_credited"
	EventDestinationNotFound   = "account.destination_not_found"
	EventTransferFundsReturned = "account.transfer_funds_returned"
)

// Transfer record event names.
const (
	EventTransferCreated   = "transfer.created"
	EventTransferCompleted = "transfer.completed"
	EventTransferFailed    = "transfer.failed"
)

// AccountCreated records the creation of a ledger account. The balance of a
// freshly created account is zero.
type AccountCreated struct {
	AccountID      string `json:"account_id"`
	OverdraftLimit int64  `json:"overdraft_limit"`
}

func (AccountCreated) EventName() string { return EventAccountCreated }

// MoneyDeposited records a local deposit.
type MoneyDeposited struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
}

func (MoneyDeposited) EventName() string          { return EventMoneyDeposited }
func (e MoneyDeposited) MovementAmount() int64    { return e.Amount }
func (MoneyDeposited) MovementPolarity() Polarity { return PolarityIncrease }

// MoneyWithdrawn records a local withdrawal that passed the overdraft check.
type MoneyWithdrawn struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
}

func (MoneyWithdrawn) EventName() string          { return EventMoneyWithdrawn }
func (e MoneyWithdrawn) MovementAmount() int64    { return e.Amount }
func (MoneyWithdrawn) MovementPolarity() Polarity { return PolarityDecrease }

// SourceDebited records the debit leg of a transfer on the source account.
type SourceDebited struct {
	AccountID  string `json:"account_id"`
	Amount     int64  `json:"amount"`
	TransferID string `json:"transfer_id"`
}

func (SourceDebited) EventName() string          { return EventSourceDebited }
func (e SourceDebited) MovementAmount() int64    { return e.Amount }
func (SourceDebited) MovementPolarity() Polarity { return PolarityDecrease }
func (e SourceDebited) CorrelationID() string    { return e.TransferID }

// SourceDebitRejected signals that the source account refused the debit
// because it would exceed the overdraft limit. It carries no balance effect.
type SourceDebitRejected struct {
	TransferID string `json:"transfer_id"`
}

func (SourceDebitRejected) EventName() string       { return EventSourceDebitRejected }
func (e SourceDebitRejected) CorrelationID() string { return e.TransferID }

// SourceNotFound signals that the debit command targeted an account with no
// history. Published on the bus only; there is no stream to append it to.
type SourceNotFound struct {
	AccountID  string `json:"account_id"`
	TransferID string `json:"transfer_id"`
}

func (SourceNotFound) EventName() string       { return EventSourceNotFound }
func (e SourceNotFound) CorrelationID() string { return e.TransferID }

// DestinationCredited records the credit leg of a transfer on the destination
// account. The destination side never rejects; overdraft applies to debits only.
type DestinationCredited struct {
	AccountID  string `json:"account_id"`
	Amount     int64  `json:"amount"`
	TransferID string `json:"transfer_id"`
}

func (DestinationCredited) EventName() string          { return EventDestinationCredited }
func (e DestinationCredited) MovementAmount() int64    { return e.Amount }
func (DestinationCredited) MovementPolarity() Polarity { return PolarityIncrease }
func (e DestinationCredited) CorrelationID() string    { return e.TransferID }

// DestinationNotFound signals that the credit command targeted an account
// with no history. Published on the bus only.
type DestinationNotFound struct {
	AccountID  string `json:"account_id"`
	TransferID string `json:"transfer_id"`
}

func (DestinationNotFound) EventName() string       { return EventDestinationNotFound }
func (e DestinationNotFound) CorrelationID() string { return e.TransferID }

// TransferFundsReturned records the compensating repayment to the source
// account after a transfer failed past its debit leg.
type TransferFundsReturned struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
}

func (TransferFundsReturned) EventName() string          { return EventTransferFundsReturned }
func (e TransferFundsReturned) MovementAmount() int64    { return e.Amount }
func (TransferFundsReturned) MovementPolarity() Polarity { return PolarityIncrease }

// TransferCreated records the declared intent of a transfer and starts its
// coordinator instance.
type TransferCreated struct {
	TransferID           string `json:"transfer_id"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               int64  `json:"amount"`
}

func (TransferCreated) EventName() string       { return EventTransferCreated }
func (e TransferCreated) CorrelationID() string { return e.TransferID }

// TransferCompleted marks the transfer record COMPLETED.
type TransferCompleted struct {
	TransferID string `json:"transfer_id"`
}

func (TransferCompleted) EventName() string       { return EventTransferCompleted }
func (e TransferCompleted) CorrelationID() string { return e.TransferID }

// TransferFailed marks the transfer record FAILED.
type TransferFailed struct {
	TransferID string `json:"transfer_id"`
}

func (TransferFailed) EventName() string       { return EventTransferFailed }
func (e TransferFailed) CorrelationID() string { return e.TransferID }

// eventFactories maps event names to zero-value constructors for decoding
// stored payloads. Built once; lookup only.
var eventFactories = map[string]func() Event{
	EventAccountCreated:        func() Event { return &AccountCreated{} },
	EventMoneyDeposited:        func() Event { return &MoneyDeposited{} },
	EventMoneyWithdrawn:        func() Event { return &MoneyWithdrawn{} },
	EventSourceDebited:         func() Event { return &SourceDebited{} },
	EventSourceDebitRejected:   func() Event { return &SourceDebitRejected{} },
	EventSourceNotFound:        func() Event { return &SourceNotFound{} },
	EventDestinationCredited:   func() Event { return &DestinationCredited{} },
	EventDestinationNotFound:   func() Event { return &DestinationNotFound{} },
	EventTransferFundsReturned: func() Event { return &TransferFundsReturned{} },
	EventTransferCreated:       func() Event { return &TransferCreated{} },
	EventTransferCompleted:     func() Event { return &TransferCompleted{} },
	EventTransferFailed:        func() Event { return &TransferFailed{} },
}

// NewEvent returns a zero value of the event registered under name, suitable
// as an unmarshal target. The second return is false for unknown names.
func NewEvent(name string) (Event, bool) {
	factory, ok := eventFactories[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}
