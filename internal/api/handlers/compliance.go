// compliance.go — обработчики сводки соответствия.
// GET /api/v1/compliance — сетка статусов за 12 месяцев, опционально по заказчику
// GET /api/v1/compliance/customers — список заказчиков для фильтра
package handlers

import (
	"net/http"
)

// GetCompliance — сводка соответствия. Параметр customer сужает строки.
func (h *APIHandler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	rep, err := h.compliance.Aggregate(r.Context(), r.URL.Query().Get("customer"))
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// GetComplianceCustomers — список заказчиков из справочника деталей.
func (h *APIHandler) GetComplianceCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.compliance.Customers(r.Context())
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}
