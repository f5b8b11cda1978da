package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/stockline-backend/internal/catalog"
	"github.com/angelmondragon/stockline-backend/internal/orders"
	"github.com/angelmondragon/stockline-backend/internal/receipts"
	"github.com/angelmondragon/stockline-backend/internal/session"
	"github.com/angelmondragon/stockline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
	"github.com/angelmondragon/stockline-backend/pkg/logger"
	"github.com/angelmondragon/stockline-backend/pkg/metrics"
)

const defaultDateWindowDays = 7

type handlerFunc func(ctx context.Context, sess *session.Session, event Event) (*Prompt, error)

// Engine drives the conversational workflows. Each inbound event is routed
// to the handler for the session's current state; the session store
// guarantees events for one session never run concurrently.
type Engine struct {
	store      *session.Store
	catalogSvc catalog.Service
	receipts   receipts.Service
	orders     orders.Service
	logg       *logger.Logger
	metrics    *metrics.WorkflowMetrics
	dateWindow int

	handlers map[string]handlerFunc
}

// Config carries the engine's collaborators.
type Config struct {
	Store          *session.Store
	Catalog        catalog.Service
	Receipts       receipts.Service
	Orders         orders.Service
	Logger         *logger.Logger
	Metrics        *metrics.WorkflowMetrics
	DateWindowDays int
}

// NewEngine builds the workflow engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if cfg.Receipts == nil {
		return nil, fmt.Errorf("receipts service required")
	}
	if cfg.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if cfg.DateWindowDays <= 0 {
		cfg.DateWindowDays = defaultDateWindowDays
	}

	e := &Engine{
		store:      cfg.Store,
		catalogSvc: cfg.Catalog,
		receipts:   cfg.Receipts,
		orders:     cfg.Orders,
		logg:       cfg.Logger,
		metrics:    cfg.Metrics,
		dateWindow: cfg.DateWindowDays,
	}
	e.handlers = map[string]handlerFunc{
		stateClientSearch:  e.handleClientSearch,
		stateClientSelect:  e.handleClientSelect,
		stateAddressSelect: e.handleAddressSelect,
		stateAddressEnter:  e.handleAddressEnter,
		stateOrderProduct:  e.handleOrderProduct,
		stateOrderQuantity: e.handleOrderQuantity,
		stateOrderLineDone: e.handleOrderLineDone,
		stateOrderConfirm:  e.handleOrderConfirm,

		stateSupplierSelect:  e.handleSupplierSelect,
		stateInvoiceDate:     e.handleInvoiceDate,
		stateInvoiceNumber:   e.handleInvoiceNumber,
		stateReceiptProduct:  e.handleReceiptProduct,
		stateReceiptQuantity: e.handleReceiptQuantity,
		stateReceiptCost:     e.handleReceiptCost,
		stateReceiptLineDone: e.handleReceiptLineDone,
		stateReceiptConfirm:  e.handleReceiptConfirm,

		stateOrderPick:      e.handleOrderPick,
		stateOrderMenu:      e.handleOrderMenu,
		stateEditLinePick:   e.handleEditLinePick,
		stateEditLineQty:    e.handleEditLineQty,
		stateDeleteLinePick: e.handleDeleteLinePick,
		stateAddProductPick: e.handleAddProductPick,
		stateAddProductQty:  e.handleAddProductQty,
		stateEditDatePick:   e.handleEditDatePick,
		stateDeleteConfirm:  e.handleDeleteConfirm,
	}
	return e, nil
}

// Dispatch processes one event and returns the reply prompt. Recoverable
// problems (bad input, vanished selections, commit conflicts) are folded
// into the prompt; only infrastructure failures surface as errors.
func (e *Engine) Dispatch(ctx context.Context, event Event) (*Prompt, error) {
	var reply *Prompt
	err := e.store.Mutate(ctx, event.SessionID, func(sess *session.Session) error {
		ctx := e.eventContext(ctx, sess)

		if event.Kind == EventKindSelection && event.Payload == tokenCancel {
			reply = e.cancel(ctx, sess)
			return nil
		}
		if sess.State == stateIdle {
			reply = e.handleIdle(ctx, sess, event)
			return nil
		}

		handler, ok := e.handlers[sess.State]
		if !ok {
			e.logError(ctx, fmt.Errorf("no handler for state %q", sess.State))
			reply = e.reset(sess, "Something went wrong, the draft was discarded.")
			return nil
		}

		p, err := handler(ctx, sess, event)
		if err != nil {
			reply = e.recover(ctx, sess, err)
			return nil
		}
		reply = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// handleIdle starts a workflow or offers the start menu.
func (e *Engine) handleIdle(ctx context.Context, sess *session.Session, event Event) *Prompt {
	if event.Kind == EventKindSelection {
		if value, ok := tokenValue(event.Payload, tokenPrefixStart); ok {
			kind, err := enums.ParseWorkflowKind(value)
			if err == nil {
				return e.startWorkflow(ctx, sess, kind)
			}
		}
	}
	return prompt(sess.ID, "What would you like to do?", startOptions()...)
}

func (e *Engine) startWorkflow(ctx context.Context, sess *session.Session, kind enums.WorkflowKind) *Prompt {
	sess.Workflow = string(kind)
	sess.Draft = session.Draft{}

	switch kind {
	case enums.WorkflowKindOrderCreate:
		sess.State = stateClientSearch
		return prompt(sess.ID, "New order. Type part of the client's name to search.")
	case enums.WorkflowKindReceiptCreate:
		sess.State = stateSupplierSelect
		p, err := e.promptSupplierList(ctx, sess)
		if err != nil {
			return e.recover(ctx, sess, err)
		}
		return p
	case enums.WorkflowKindOrderEdit:
		sess.State = stateOrderPick
		p, err := e.promptEditableOrders(ctx, sess)
		if err != nil {
			return e.recover(ctx, sess, err)
		}
		return p
	}
	sess.Workflow = ""
	return prompt(sess.ID, "What would you like to do?", startOptions()...)
}

// cancel drops the draft without touching anything persisted. Canceling an
// idle session is a harmless no-op.
func (e *Engine) cancel(ctx context.Context, sess *session.Session) *Prompt {
	id := sess.ID
	*sess = session.Session{ID: id}
	if e.logg != nil {
		e.logg.Info(ctx, "session canceled")
	}
	return prompt(id, "Canceled. Nothing was saved.", startOptions()...)
}

// reset clears the workflow state after an unrecoverable failure.
func (e *Engine) reset(sess *session.Session, text string) *Prompt {
	id := sess.ID
	*sess = session.Session{ID: id}
	return prompt(id, text, startOptions()...)
}

// recover maps a handler error onto the conversation. Validation problems
// keep the state and re-prompt; everything else discards the draft.
func (e *Engine) recover(ctx context.Context, sess *session.Session, err error) *Prompt {
	coded := pkgerrors.As(err)
	if coded != nil {
		switch coded.Code() {
		case pkgerrors.CodeValidation:
			return prompt(sess.ID, coded.Message()+" Try again.")
		case pkgerrors.CodeStale:
			return e.recoverStale(ctx, sess, err)
		case pkgerrors.CodeConflict:
			e.logError(ctx, err)
			return e.reset(sess, "That document was changed by someone else. The draft was discarded; please start over.")
		case pkgerrors.CodeStateConflict:
			e.logError(ctx, err)
			return e.reset(sess, coded.Message()+" The draft was discarded.")
		}
	}
	e.logError(ctx, err)
	return e.reset(sess, "Something went wrong, the draft was discarded. Nothing was saved.")
}

// recoverStale handles stale references that escape a handler, such as the
// edited order vanishing between menu renders. Inside order-edit the operator
// goes back to the order list; elsewhere the draft is discarded.
func (e *Engine) recoverStale(ctx context.Context, sess *session.Session, err error) *Prompt {
	e.logError(ctx, err)
	if sess.Workflow == string(enums.WorkflowKindOrderEdit) {
		sess.Draft = session.Draft{}
		sess.State = stateOrderPick
		if p, perr := e.promptEditableOrders(ctx, sess); perr == nil {
			p.Text = "That order is no longer available. " + p.Text
			return p
		}
	}
	return e.reset(sess, "That item is no longer available. The draft was discarded.")
}

func (e *Engine) eventContext(ctx context.Context, sess *session.Session) context.Context {
	if e.logg == nil {
		return ctx
	}
	ctx = e.logg.WithSessionID(ctx, sess.ID)
	if sess.Workflow != "" {
		ctx = e.logg.WithWorkflow(ctx, sess.Workflow)
	}
	if sess.State != "" {
		ctx = e.logg.WithState(ctx, sess.State)
	}
	return ctx
}

func (e *Engine) logError(ctx context.Context, err error) {
	if e.logg != nil {
		e.logg.Error(ctx, "workflow event failed", err)
	}
}

func (e *Engine) observeCommit(workflow string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveDuration(workflow, time.Since(start))
	if err != nil {
		reason := "internal"
		if coded := pkgerrors.As(err); coded != nil {
			reason = string(coded.Code())
		}
		e.metrics.IncFailure(workflow, reason)
		return
	}
	e.metrics.IncSuccess(workflow)
}

func startOptions() []Option {
	return []Option{
		{Label: "New order", Token: tokenPrefixStart + string(enums.WorkflowKindOrderCreate)},
		{Label: "Receive goods", Token: tokenPrefixStart + string(enums.WorkflowKindReceiptCreate)},
		{Label: "Edit orders", Token: tokenPrefixStart + string(enums.WorkflowKindOrderEdit)},
	}
}
