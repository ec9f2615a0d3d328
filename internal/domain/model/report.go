// report.go — доменная модель инспекционного отчёта.
package model

import (
	"time"

	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// InspectionReport — поданный отчёт инспекции. Характеристики
// замораживаются при создании: последующие изменения карточки детали
// на отчёт не влияют.
type InspectionReport struct {
	// ID — идентификатор вида "<partNo>-<unix-миллисекунды подачи>".
	ID string `json:"id"`
	// PartNo, PartName, Customer — копия реквизитов детали на момент подачи.
	PartNo   string `json:"partNo"`
	PartName string `json:"partName"`
	Customer string `json:"customer"`
	// Characteristics — развёрнутые строки с наблюдениями.
	Characteristics []Characteristic `json:"characteristics"`
	// Remarks — примечания; при reject перезаписываются атрибутированной
	// пометкой.
	Remarks string `json:"remarks"`
	// Status — текущая ступень согласования.
	Status workflow.Status `json:"status"`
	// SubmittedBy — идентификатор аудитора, подавшего отчёт.
	SubmittedBy string `json:"submittedBy"`
	// SubmissionDate — момент подачи; определяет месячную корзину
	// сводной таблицы.
	SubmissionDate time.Time `json:"submissionDate"`
	// LastUpdatedBy — роль, выполнившая последний переход.
	LastUpdatedBy workflow.Role `json:"lastUpdatedBy,omitempty"`

	// Подписи проверяющих: nil — ступень ещё не пройдена. Хранится
	// идентификатор пользователя, email разрешается при проекции.
	TeamLeaderAuditSignature *string `json:"teamleaderauditSignature,omitempty"`
	HOFAuditSignature        *string `json:"hofauditSignature,omitempty"`
	QualityHeadSignature     *string `json:"qualityheadSignature,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Signature возвращает значение поля подписи по его имени.
func (r *InspectionReport) Signature(field workflow.SignatureField) *string {
	switch field {
	case workflow.SignatureTeamLeaderAudit:
		return r.TeamLeaderAuditSignature
	case workflow.SignatureHOFAudit:
		return r.HOFAuditSignature
	case workflow.SignatureQualityHead:
		return r.QualityHeadSignature
	}
	return nil
}

// Apply накладывает патч перехода на запись в памяти. Используется для
// формирования ответа после успешного применения патча в хранилище.
func (r *InspectionReport) Apply(p *workflow.Patch) {
	r.Status = p.Status
	r.LastUpdatedBy = p.LastUpdatedBy
	sig := p.SignatureValue
	switch p.SignatureField {
	case workflow.SignatureTeamLeaderAudit:
		r.TeamLeaderAuditSignature = &sig
	case workflow.SignatureHOFAudit:
		r.HOFAuditSignature = &sig
	case workflow.SignatureQualityHead:
		r.QualityHeadSignature = &sig
	}
	if p.Remarks != nil {
		r.Remarks = *p.Remarks
	}
}
