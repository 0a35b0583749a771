package domain

// Command is implemented by every message routed through the command bus.
// TargetID identifies the aggregate instance the bus serializes on.
type Command interface {
	CommandName() string
	TargetID() string
}

// Account command names.
const (
	CmdCreateAccount       = "account.create"
	CmdDepositMoney        = "account.deposit"
	CmdWithdrawMoney       = "account.withdraw"
	CmdDebitSource         = "account.debit_source"
	CmdCreditDestination   = "account.credit_destination"
	CmdReturnTransferFunds = "account.return_transfer_funds"
)

// Transfer record command names.
const (
	CmdCreateTransfer        = "transfer.create"
	CmdMarkTransferCompleted = "transfer.mark_completed"
	CmdMarkTransferFailed    = "transfer.mark_failed"
)

type CreateAccount struct {
	AccountID      string
	OverdraftLimit int64
}

func (CreateAccount) CommandName() string { return CmdCreateAccount }
func (c CreateAccount) TargetID() string  { return c.AccountID }

type DepositMoney struct {
	AccountID string
	Amount    int64
}

func (DepositMoney) CommandName() string { return CmdDepositMoney }
func (c DepositMoney) TargetID() string  { return c.AccountID }

type WithdrawMoney struct {
	AccountID string
	Amount    int64
}

func (WithdrawMoney) CommandName() string { return CmdWithdrawMoney }
func (c WithdrawMoney) TargetID() string  { return c.AccountID }

// DebitSource is issued only by the transfer coordinator against the source
// account of a transfer.
type DebitSource struct {
	AccountID  string
	TransferID string
	Amount     int64
}

func (DebitSource) CommandName() string { return CmdDebitSource }
func (c DebitSource) TargetID() string  { return c.AccountID }

// CreditDestination is issued only by the transfer coordinator against the
// destination account of a transfer.
type CreditDestination struct {
	AccountID  string
	TransferID string
	Amount     int64
}

func (CreditDestination) CommandName() string { return CmdCreditDestination }
func (c CreditDestination) TargetID() string  { return c.AccountID }

// ReturnTransferFunds is the compensation step: it repays a debited amount to
// the source account after the destination side of a transfer failed.
type ReturnTransferFunds struct {
	AccountID string
	Amount    int64
}

func (ReturnTransferFunds) CommandName() string { return CmdReturnTransferFunds }
func (c ReturnTransferFunds) TargetID() string  { return c.AccountID }

type CreateTransfer struct {
	TransferID           string
	SourceAccountID      string
	DestinationAccountID string
	Amount               int64
}

func (CreateTransfer) CommandName() string { return CmdCreateTransfer }
func (c CreateTransfer) TargetID() string  { return c.TransferID }

type MarkTransferCompleted struct {
	TransferID string
}

func (MarkTransferCompleted) CommandName() string { return CmdMarkTransferCompleted }
func (c MarkTransferCompleted) TargetID() string  { return c.TransferID }

type MarkTransferFailed struct {
	TransferID string
}

func (MarkTransferFailed) CommandName() string { return CmdMarkTransferFailed }
func (c MarkTransferFailed) TargetID() string  { return c.TransferID }
