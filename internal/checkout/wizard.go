package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/cart"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotReview    = errors.New("submission is only allowed from the review step")
	ErrProcessing   = errors.New("checkout is processing")
	ErrWizardClosed = errors.New("checkout already finished")
	ErrStepBlocked  = errors.New("current step has validation errors")
	ErrNotFailed    = errors.New("no failed submission to recover from")
)

type Step int

const (
	StepDelivery Step = iota
	StepPayment
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepDelivery:
		return "delivery"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	}
	return "unknown"
}

type State string

const (
	StateActive     State = "active"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

type PaymentMethod string

const (
	MethodCOD       PaymentMethod = "cod"
	MethodJazzCash  PaymentMethod = "jazzcash"
	MethodEasyPaisa PaymentMethod = "easypaisa"
	MethodCard      PaymentMethod = "card"
)

// Simulated gateway round trip: short for cash, longer for electronic
// methods. There is no real gateway behind this; the pause paces the UX and
// blocks duplicate submissions.
const (
	codDelay        = 1 * time.Second
	electronicDelay = 2 * time.Second
)

type DeliveryDetails struct {
	Address             string `json:"delivery_address"`
	City                string `json:"delivery_city"`
	Phone               string `json:"phone"`
	SpecialInstructions string `json:"special_instructions"`
}

// PaymentDetails is a closed set of per-method records, so a card number
// cannot coexist with method=cod.
type PaymentDetails interface {
	Method() PaymentMethod
}

type CODDetails struct{}

func (CODDetails) Method() PaymentMethod { return MethodCOD }

type WalletDetails struct {
	Wallet PaymentMethod // MethodJazzCash or MethodEasyPaisa
	Phone  string
}

func (w WalletDetails) Method() PaymentMethod { return w.Wallet }

type CardDetails struct {
	Number string
	Name   string
	Expiry string
	CVV    string
}

func (CardDetails) Method() PaymentMethod { return MethodCard }

// PlaceOrderFunc issues the single order-creation call; the server reads the
// caller's current cart.
type PlaceOrderFunc func(ctx context.Context, req api.CreateOrderRequest) (orderNumber string, err error)

// Wizard is the three-step checkout state machine for one session:
// Delivery -> Payment -> Review, then a non-interruptible processing window
// ending in a terminal success or failure.
type Wizard struct {
	cart  *cart.Store
	place PlaceOrderFunc
	sleep func(time.Duration)

	mu          sync.Mutex
	step        Step
	state       State
	delivery    DeliveryDetails
	payment     PaymentDetails
	errors      map[string]string
	orderNumber string
	failReason  string
}

func NewWizard(cartStore *cart.Store, place PlaceOrderFunc, sleep func(time.Duration)) (*Wizard, error) {
	if cartStore.Snapshot().IsEmpty() {
		return nil, ErrEmptyCart
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Wizard{
		cart:    cartStore,
		place:   place,
		sleep:   sleep,
		step:    StepDelivery,
		state:   StateActive,
		payment: CODDetails{},
		errors:  map[string]string{},
	}, nil
}

// View is a read-only snapshot of the wizard for rendering.
type View struct {
	Step        Step              `json:"-"`
	StepName    string            `json:"step"`
	State       State             `json:"state"`
	Delivery    DeliveryDetails   `json:"delivery"`
	Method      PaymentMethod     `json:"payment_method"`
	Errors      map[string]string `json:"errors,omitempty"`
	OrderNumber string            `json:"order_number,omitempty"`
	FailReason  string            `json:"fail_reason,omitempty"`
	Totals      cart.Totals       `json:"totals"`
}

func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	return View{
		Step:        w.step,
		StepName:    w.step.String(),
		State:       w.state,
		Delivery:    w.delivery,
		Method:      w.payment.Method(),
		Errors:      errs,
		OrderNumber: w.orderNumber,
		FailReason:  w.failReason,
		Totals:      w.cart.Totals(),
	}
}

// processing reports whether a payment attempt is currently in flight.
func (w *Wizard) processing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == StateProcessing
}

func (w *Wizard) interactive() error {
	switch w.state {
	case StateProcessing:
		return ErrProcessing
	case StateSucceeded, StateFailed:
		return ErrWizardClosed
	}
	return nil
}

func (w *Wizard) SetDelivery(d DeliveryDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return err
	}
	w.delivery = d
	for _, field := range []string{"delivery_address", "delivery_city", "phone"} {
		delete(w.errors, field)
	}
	return nil
}

func (w *Wizard) SetPayment(p PaymentDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return err
	}
	w.payment = p
	for _, field := range []string{"wallet_phone", "card_number", "card_name", "card_expiry", "card_cvv"} {
		delete(w.errors, field)
	}
	return nil
}

// Next advances a step when the current one validates. Validation errors are
// stored field-by-field and block the move; no network call is ever made for
// an invalid step.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return err
	}
	var errs map[string]string
	switch w.step {
	case StepDelivery:
		errs = validateDelivery(w.delivery)
	case StepPayment:
		errs = validatePayment(w.payment)
	case StepReview:
		return ErrNotReview
	}
	if len(errs) > 0 {
		w.errors = errs
		return ErrStepBlocked
	}
	w.errors = map[string]string{}
	w.step++
	return nil
}

// Back is always allowed between steps.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return err
	}
	if w.step > StepDelivery {
		w.step--
	}
	return nil
}

// Submit runs the terminal submission protocol: processing window with the
// simulated gateway delay, then one order-creation request. It blocks until
// the wizard reaches a terminal state.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if err := w.interactive(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.step != StepReview {
		w.mu.Unlock()
		return ErrNotReview
	}
	method := w.payment.Method()
	req := api.CreateOrderRequest{
		DeliveryAddress:     w.delivery.Address,
		DeliveryCity:        w.delivery.City,
		PaymentMethod:       string(method),
		SpecialInstructions: w.delivery.SpecialInstructions,
	}
	w.state = StateProcessing
	w.mu.Unlock()

	delay := electronicDelay
	if method == MethodCOD {
		delay = codDelay
	}
	w.sleep(delay)

	orderNumber, err := w.place(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateFailed
		w.failReason = "Failed to place order"
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.Message != "" {
			w.failReason = apiErr.Message
		}
		if errors.Is(err, api.ErrSessionExpired) {
			w.failReason = "Your session has expired. Please log in again."
			return err
		}
		return nil
	}
	w.state = StateSucceeded
	w.orderNumber = orderNumber
	// Refetch rather than assume: the server already emptied the cart.
	w.cart.Fetch(ctx)
	return nil
}

// Retry recovers from a failed submission by returning to the payment step.
func (w *Wizard) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateFailed {
		return ErrNotFailed
	}
	w.state = StateActive
	w.failReason = ""
	w.step = StepPayment
	return nil
}

// FallbackToCOD recovers from a failed electronic payment by switching to
// cash on delivery and returning to review for resubmission.
func (w *Wizard) FallbackToCOD() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateFailed {
		return ErrNotFailed
	}
	w.state = StateActive
	w.failReason = ""
	w.payment = CODDetails{}
	w.step = StepReview
	return nil
}
