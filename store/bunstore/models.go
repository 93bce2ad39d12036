package bunstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/relation"
	"github.com/xraph/receivables/types"
)

// ==================== Denomination models ====================

type denominationModel struct {
	bun.BaseModel `bun:"table:denomination"`

	ID          string    `bun:"id,pk"`
	Description string    `bun:"description"`
	Code        string    `bun:"code"`
	Symbol      string    `bun:"symbol"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

func toDenominationModel(d *denomination.Denomination) *denominationModel {
	return &denominationModel{
		ID:          d.ID.String(),
		Description: d.Description,
		Code:        d.Code,
		Symbol:      d.Symbol,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func fromDenominationModel(m *denominationModel) (*denomination.Denomination, error) {
	denomID, err := id.ParseDenominationID(m.ID)
	if err != nil {
		return nil, err
	}
	return &denomination.Denomination{
		Record:      record(m.CreatedAt, m.UpdatedAt),
		ID:          denomID,
		Description: m.Description,
		Code:        m.Code,
		Symbol:      m.Symbol,
	}, nil
}

type rateModel struct {
	bun.BaseModel `bun:"table:conversion_rate"`

	ID             string    `bun:"id,pk"`
	UnitID         string    `bun:"unit_id"`
	DenominationID string    `bun:"denomination_id"`
	Basis          int64     `bun:"basis"`
	EffectiveAt    time.Time `bun:"effective_at"`
	CreatedAt      time.Time `bun:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at"`
}

func toRateModel(r *denomination.Rate) *rateModel {
	return &rateModel{
		ID:             r.ID.String(),
		UnitID:         r.UnitID.String(),
		DenominationID: r.DenominationID.String(),
		Basis:          r.Basis,
		EffectiveAt:    r.EffectiveAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func fromRateModel(m *rateModel) (*denomination.Rate, error) {
	rateID, err := id.ParseWithPrefix(m.ID, id.PrefixRate)
	if err != nil {
		return nil, err
	}
	unitID, err := id.ParseDenominationID(m.UnitID)
	if err != nil {
		return nil, err
	}
	denomID, err := id.ParseDenominationID(m.DenominationID)
	if err != nil {
		return nil, err
	}
	return &denomination.Rate{
		Record:         record(m.CreatedAt, m.UpdatedAt),
		ID:             rateID,
		UnitID:         unitID,
		DenominationID: denomID,
		Basis:          m.Basis,
		EffectiveAt:    m.EffectiveAt.UTC(),
	}, nil
}

// ==================== Entity models ====================

type entityModel struct {
	bun.BaseModel `bun:"table:entity"`

	ID             string       `bun:"id,pk"`
	Name           string       `bun:"name"`
	Address        types.Sealed `bun:"address"`
	Identification types.Sealed `bun:"identification"`
	CreatedAt      time.Time    `bun:"created_at"`
	UpdatedAt      time.Time    `bun:"updated_at"`
}

func toEntityModel(e *entity.Entity) *entityModel {
	return &entityModel{
		ID:             e.ID.String(),
		Name:           e.Name,
		Address:        e.Address,
		Identification: e.Identification,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func fromEntityModel(m *entityModel) (*entity.Entity, error) {
	entityID, err := id.ParseEntityID(m.ID)
	if err != nil {
		return nil, err
	}
	return &entity.Entity{
		Record:         record(m.CreatedAt, m.UpdatedAt),
		ID:             entityID,
		Name:           m.Name,
		Address:        m.Address,
		Identification: m.Identification,
	}, nil
}

type accountModel struct {
	bun.BaseModel `bun:"table:account"`

	ID               string       `bun:"id,pk"`
	EntityID         string       `bun:"entity_id"`
	DenominationID   string       `bun:"denomination_id"`
	CounterpartyInfo types.Sealed `bun:"counterparty_info"`
	CreatedAt        time.Time    `bun:"created_at"`
	UpdatedAt        time.Time    `bun:"updated_at"`
}

func toAccountModel(a *entity.Account) *accountModel {
	return &accountModel{
		ID:               a.ID.String(),
		EntityID:         a.EntityID.String(),
		DenominationID:   a.DenominationID.String(),
		CounterpartyInfo: a.CounterpartyInfo,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func fromAccountModel(m *accountModel) (*entity.Account, error) {
	accountID, err := id.ParseAccountID(m.ID)
	if err != nil {
		return nil, err
	}
	entityID, err := id.ParseEntityID(m.EntityID)
	if err != nil {
		return nil, err
	}
	denomID, err := id.ParseDenominationID(m.DenominationID)
	if err != nil {
		return nil, err
	}
	return &entity.Account{
		Record:           record(m.CreatedAt, m.UpdatedAt),
		ID:               accountID,
		EntityID:         entityID,
		DenominationID:   denomID,
		CounterpartyInfo: m.CounterpartyInfo,
	}, nil
}

// ==================== Relationship models ====================

type relationshipModel struct {
	bun.BaseModel `bun:"table:relation"`

	ID          string    `bun:"id,pk"`
	Description string    `bun:"description"`
	PayeeID     string    `bun:"payee_id"`
	PayorID     string    `bun:"payor_id"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

func toRelationshipModel(r *relation.Relationship) *relationshipModel {
	return &relationshipModel{
		ID:          r.ID.String(),
		Description: r.Description,
		PayeeID:     r.PayeeID.String(),
		PayorID:     r.PayorID.String(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromRelationshipModel(m *relationshipModel) (*relation.Relationship, error) {
	relID, err := id.ParseRelationshipID(m.ID)
	if err != nil {
		return nil, err
	}
	payeeID, err := id.ParseEntityID(m.PayeeID)
	if err != nil {
		return nil, err
	}
	payorID, err := id.ParseEntityID(m.PayorID)
	if err != nil {
		return nil, err
	}
	return &relation.Relationship{
		Record:      record(m.CreatedAt, m.UpdatedAt),
		ID:          relID,
		Description: m.Description,
		PayeeID:     payeeID,
		PayorID:     payorID,
	}, nil
}

// ==================== Charge models ====================

type feeScheduleModel struct {
	bun.BaseModel `bun:"table:fee_schedule"`

	ID            string    `bun:"id,pk"`
	PeriodSeconds int64     `bun:"period_seconds"`
	InterestRate  int64     `bun:"interest_rate"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

func toFeeScheduleModel(f *charge.FeeSchedule) *feeScheduleModel {
	return &feeScheduleModel{
		ID:            f.ID.String(),
		PeriodSeconds: f.PeriodSeconds(),
		InterestRate:  f.InterestRate,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func fromFeeScheduleModel(m *feeScheduleModel) (*charge.FeeSchedule, error) {
	scheduleID, err := id.ParseWithPrefix(m.ID, id.PrefixFeeSchedule)
	if err != nil {
		return nil, err
	}
	return &charge.FeeSchedule{
		Record:            record(m.CreatedAt, m.UpdatedAt),
		ID:                scheduleID,
		CompoundingPeriod: time.Duration(m.PeriodSeconds) * time.Second,
		InterestRate:      m.InterestRate,
	}, nil
}

type chargeModel struct {
	bun.BaseModel `bun:"table:charge"`

	ID             string        `bun:"id,pk"`
	RelationID     string        `bun:"relation_id"`
	DenominationID string        `bun:"denomination_id"`
	Description    string        `bun:"description"`
	Payload        types.Payload `bun:"payload"`
	Amount         int64         `bun:"amount"`
	DueDate        time.Time     `bun:"due_date"`
	FeeScheduleID  string        `bun:"fee_schedule_id,nullzero"`
	State          string        `bun:"state"`
	CreatedAt      time.Time     `bun:"created_at"`
	UpdatedAt      time.Time     `bun:"updated_at"`
}

func toChargeModel(c *charge.Charge) *chargeModel {
	m := &chargeModel{
		ID:             c.ID.String(),
		RelationID:     c.RelationID.String(),
		DenominationID: c.DenominationID.String(),
		Description:    c.Description,
		Payload:        c.Payload,
		Amount:         c.Amount,
		DueDate:        c.DueDate,
		State:          stateString(c.State),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if !c.FeeScheduleID.IsNil() {
		m.FeeScheduleID = c.FeeScheduleID.String()
	}
	return m
}

func fromChargeModel(m *chargeModel) (*charge.Charge, error) {
	chargeID, err := id.ParseChargeID(m.ID)
	if err != nil {
		return nil, err
	}
	relID, err := id.ParseRelationshipID(m.RelationID)
	if err != nil {
		return nil, err
	}
	denomID, err := id.ParseDenominationID(m.DenominationID)
	if err != nil {
		return nil, err
	}
	c := &charge.Charge{
		Record:         record(m.CreatedAt, m.UpdatedAt),
		ID:             chargeID,
		RelationID:     relID,
		DenominationID: denomID,
		Description:    m.Description,
		Payload:        m.Payload,
		Amount:         m.Amount,
		DueDate:        m.DueDate.UTC(),
		State:          types.State(m.State),
	}
	if m.FeeScheduleID != "" {
		c.FeeScheduleID, err = id.ParseWithPrefix(m.FeeScheduleID, id.PrefixFeeSchedule)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	bun.BaseModel `bun:"table:payment"`

	ID            string    `bun:"id,pk"`
	FromAccountID string    `bun:"from_account_id"`
	ToAccountID   string    `bun:"to_account_id"`
	Description   string    `bun:"description"`
	Date          time.Time `bun:"date"`
	Amount        int64     `bun:"amount"`
	State         string    `bun:"state"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:            p.ID.String(),
		FromAccountID: p.FromAccountID.String(),
		ToAccountID:   p.ToAccountID.String(),
		Description:   p.Description,
		Date:          p.Date,
		Amount:        p.Amount,
		State:         stateString(p.State),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	fromID, err := id.ParseAccountID(m.FromAccountID)
	if err != nil {
		return nil, err
	}
	toID, err := id.ParseAccountID(m.ToAccountID)
	if err != nil {
		return nil, err
	}
	return &payment.Payment{
		Record:        record(m.CreatedAt, m.UpdatedAt),
		ID:            paymentID,
		FromAccountID: fromID,
		ToAccountID:   toID,
		Description:   m.Description,
		Date:          m.Date.UTC(),
		Amount:        m.Amount,
		State:         types.State(m.State),
	}, nil
}

type applicationModel struct {
	bun.BaseModel `bun:"table:payment_application"`

	ID            string    `bun:"id,pk"`
	PaymentID     string    `bun:"payment_id"`
	ChargeID      string    `bun:"charge_id"`
	Amount        int64     `bun:"amount"`
	PaymentAmount int64     `bun:"payment_amount"`
	Date          time.Time `bun:"date"`
	State         string    `bun:"state"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

func toApplicationModel(a *payment.Application) *applicationModel {
	return &applicationModel{
		ID:            a.ID.String(),
		PaymentID:     a.PaymentID.String(),
		ChargeID:      a.ChargeID.String(),
		Amount:        a.Amount,
		PaymentAmount: a.PaymentAmount,
		Date:          a.Date,
		State:         stateString(a.State),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func fromApplicationModel(m *applicationModel) (*payment.Application, error) {
	appID, err := id.ParseWithPrefix(m.ID, id.PrefixApplication)
	if err != nil {
		return nil, err
	}
	paymentID, err := id.ParsePaymentID(m.PaymentID)
	if err != nil {
		return nil, err
	}
	chargeID, err := id.ParseChargeID(m.ChargeID)
	if err != nil {
		return nil, err
	}
	return &payment.Application{
		Record:        record(m.CreatedAt, m.UpdatedAt),
		ID:            appID,
		PaymentID:     paymentID,
		ChargeID:      chargeID,
		Amount:        m.Amount,
		PaymentAmount: m.PaymentAmount,
		Date:          m.Date.UTC(),
		State:         types.State(m.State),
	}, nil
}

// ==================== Helpers ====================

func record(created, updated time.Time) types.Record {
	return types.Record{CreatedAt: created.UTC(), UpdatedAt: updated.UTC()}
}

func stateString(s types.State) string {
	if s == "" {
		return string(types.StateActive)
	}
	return string(s)
}

func idStrings(ids []id.ID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}
