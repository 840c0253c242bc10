package http

import (
	"net/http"
	"sync/atomic"

	"finanzas/internal/log"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(presentSnapshot(snap)).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	points, err := s.ledger.History(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(presentHistory(points)).Write(w)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	debt, err := s.ledger.CreateDebt(r.Context(), req.toDebt(""))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Debt created",
		log.FieldDebtID, debt.ID,
		log.FieldDebtName, debt.Name,
		log.FieldBalance, debt.CurrentAmount)
	NewJSONResponse().Created("/api/debts/" + debt.ID).Body(presentDebt(debt)).Write(w)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	debt, err := s.ledger.UpdateDebt(r.Context(), req.toDebt(r.PathValue("id")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(presentDebt(debt)).Write(w)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteDebt(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.ledger.ListPayments(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(presentPayments(payments)).Write(w)
}

// handleRecordPayment returns the debt with its new balance.
func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	payment := req.toPayment(r.PathValue("id"))
	debt, err := s.ledger.RecordPayment(r.Context(), payment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.paymentsRecorded, 1)
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogPaymentRecorded(r.Context(), debt.ID, payment.Amount, debt.CurrentAmount, payment.RecordedBy)
	NewJSONResponse().Created("/api/debts/" + debt.ID + "/payments").Body(presentDebt(debt)).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	income, err := s.ledger.CreateIncome(r.Context(), req.toIncome())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	income.Amount = money(income.Amount)
	NewJSONResponse().Created("").Body(income).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	expense, err := s.ledger.CreateExpense(r.Context(), req.toExpense())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	expense.Amount = money(expense.Amount)
	NewJSONResponse().Created("").Body(expense).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
