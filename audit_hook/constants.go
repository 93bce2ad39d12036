package audithook

// Action constants for audit events.
const (
	// Entity actions
	ActionEntityCreated  = "entity.created"
	ActionEntityDeleted  = "entity.deleted"
	ActionAccountCreated = "account.created"

	// Relationship actions
	ActionRelationshipCreated = "relationship.created"

	// Denomination actions
	ActionDenominationCreated = "denomination.created"
	ActionRateRecorded        = "rate.recorded"

	// Charge actions
	ActionChargeCreated   = "charge.created"
	ActionChargesArchived = "charge.archived"

	// Payment actions
	ActionPaymentApplied     = "payment.applied"
	ActionPaymentDeactivated = "payment.deactivated"
	ActionWriteOff           = "payment.written_off"

	// Guard actions
	ActionDuplicateRejected = "duplicate.rejected"

	// Reporting actions
	ActionStatementBuilt = "statement.built"
)

// Resource constants for audit events.
const (
	ResourceEntity       = "entity"
	ResourceAccount      = "account"
	ResourceRelationship = "relationship"
	ResourceDenomination = "denomination"
	ResourceRate         = "rate"
	ResourceCharge       = "charge"
	ResourcePayment      = "payment"
	ResourceStatement    = "statement"
)

// Category constants for audit events.
const (
	CategoryParty     = "party"
	CategoryReference = "reference"
	CategoryBilling   = "billing"
	CategoryPayment   = "payment"
	CategoryIntegrity = "integrity"
	CategoryReporting = "reporting"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
