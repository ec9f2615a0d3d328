// Пакет workflow — машина состояний согласования инспекционных отчётов.
//
// Отчёт проходит трёхступенчатую цепочку проверки:
//
//	Submitted → Reviewed by Team Leader Audit → Reviewed by H.O.F. Audit → Approved
//
// На каждой ступени ровно одна роль уполномочена принять решение. Approve
// переводит отчёт на следующую ступень и записывает подпись проверяющего.
// Reject из любой нетерминальной ступени переводит отчёт в Re-scheduling
// с атрибутированной пометкой. Approved и Re-scheduling терминальны:
// повторная подача — это новый отчёт.
//
// Пакет не обращается к хранилищу: Transition возвращает Patch — набор
// полей, которые слой repository применяет одним частичным UPDATE.
package workflow

import (
	"errors"
	"fmt"
)

// Role — роль пользователя в системе. Роль назначается при регистрации
// и не меняется в течение жизни учётной записи.
type Role string

const (
	RoleAuditor         Role = "Auditor"
	RoleTeamLeaderAudit Role = "Team Leader Audit"
	RoleHOFAudit        Role = "H.O.F. Audit"
	RoleQualityHead     Role = "Quality Head"
)

// Roles возвращает все допустимые роли в порядке цепочки согласования.
func Roles() []Role {
	return []Role{RoleAuditor, RoleTeamLeaderAudit, RoleHOFAudit, RoleQualityHead}
}

// Valid сообщает, является ли строка одной из четырёх известных ролей.
func (r Role) Valid() bool {
	switch r {
	case RoleAuditor, RoleTeamLeaderAudit, RoleHOFAudit, RoleQualityHead:
		return true
	}
	return false
}

// Status — статус инспекционного отчёта.
type Status string

const (
	StatusSubmitted          Status = "Submitted"
	StatusTeamLeaderReviewed Status = "Reviewed by Team Leader Audit"
	StatusHOFReviewed        Status = "Reviewed by H.O.F. Audit"
	StatusApproved           Status = "Approved"
	StatusRescheduling       Status = "Re-scheduling"
)

// Action — действие проверяющего над отчётом.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// SignatureField — имя поля подписи в записи отчёта. Имена совпадают
// с ключами экспортного формата лог-листа.
type SignatureField string

const (
	SignatureTeamLeaderAudit SignatureField = "teamleaderauditSignature"
	SignatureHOFAudit        SignatureField = "hofauditSignature"
	SignatureQualityHead     SignatureField = "qualityheadSignature"
)

// Ошибки машины состояний. Слой API транслирует их в 401/403/409.
var (
	// ErrUnauthenticated — действие без аутентифицированного пользователя.
	ErrUnauthenticated = errors.New("пользователь не аутентифицирован")
	// ErrForbidden — роль не уполномочена действовать на текущей ступени.
	ErrForbidden = errors.New("роль не уполномочена для этого действия")
	// ErrInvalidState — отчёт в терминальном или неожиданном статусе.
	ErrInvalidState = errors.New("недопустимый статус отчёта для перехода")
)

// signatureFields — явное соответствие роль → поле подписи.
// Таблица, а не преобразование имени роли: имена полей исторические
// и из имён ролей не выводятся.
var signatureFields = map[Role]SignatureField{
	RoleTeamLeaderAudit: SignatureTeamLeaderAudit,
	RoleHOFAudit:        SignatureHOFAudit,
	RoleQualityHead:     SignatureQualityHead,
}

// SignatureFieldFor возвращает поле подписи для роли проверяющего.
// Для ролей вне цепочки проверки (Auditor) возвращает ok=false.
func SignatureFieldFor(role Role) (SignatureField, bool) {
	f, ok := signatureFields[role]
	return f, ok
}

// rule — правило одной ступени: кто проверяет и куда ведёт approve.
type rule struct {
	reviewer Role
	approved Status
}

// transitions — таблица авторизации переходов. Статусы, отсутствующие
// в таблице, терминальны.
var transitions = map[Status]rule{
	StatusSubmitted:          {reviewer: RoleTeamLeaderAudit, approved: StatusTeamLeaderReviewed},
	StatusTeamLeaderReviewed: {reviewer: RoleHOFAudit, approved: StatusHOFReviewed},
	StatusHOFReviewed:        {reviewer: RoleQualityHead, approved: StatusApproved},
}

// IsTerminal сообщает, завершён ли жизненный цикл отчёта в данном статусе.
func IsTerminal(s Status) bool {
	_, ok := transitions[s]
	return !ok
}

// ReviewerFor возвращает роль, уполномоченную действовать на данной ступени.
// Для терминальных статусов возвращает ok=false.
func ReviewerFor(s Status) (Role, bool) {
	r, ok := transitions[s]
	if !ok {
		return "", false
	}
	return r.reviewer, true
}

// Patch — набор полей, изменяемых одним переходом. Применяется к записи
// отчёта частичным обновлением: прочие поля (в том числе ранее
// накопленные подписи) не затрагиваются.
type Patch struct {
	Status         Status
	LastUpdatedBy  Role
	SignatureField SignatureField
	SignatureValue string
	// Remarks заполняется только при reject и перезаписывает примечания
	// отчёта атрибутированной пометкой.
	Remarks *string
}

// Transition вычисляет переход отчёта из статуса current действием action
// от имени пользователя actorID с ролью actor. В поле подписи записывается
// идентификатор проверяющего; проекция лог-листа разрешает его в email.
//
// Порядок проверок фиксирован: аутентификация, затем терминальность
// статуса, затем полномочия роли. Неуполномоченная роль на терминальном
// отчёте получает ErrInvalidState, а не ErrForbidden.
func Transition(current Status, actor Role, actorID string, action Action) (*Patch, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	r, ok := transitions[current]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, current)
	}
	if actor != r.reviewer {
		return nil, fmt.Errorf("%w: статус %q требует роль %q", ErrForbidden, current, r.reviewer)
	}

	field, ok := signatureFields[actor]
	if !ok {
		return nil, fmt.Errorf("%w: роль %q не имеет поля подписи", ErrForbidden, actor)
	}

	switch action {
	case ActionApprove:
		return &Patch{
			Status:         r.approved,
			LastUpdatedBy:  actor,
			SignatureField: field,
			SignatureValue: actorID,
		}, nil
	case ActionReject:
		remark := fmt.Sprintf("Rejected by %s for re-scheduling.", actor)
		return &Patch{
			Status:         StatusRescheduling,
			LastUpdatedBy:  actor,
			SignatureField: field,
			SignatureValue: actorID,
			Remarks:        &remark,
		}, nil
	default:
		return nil, fmt.Errorf("неизвестное действие %q", action)
	}
}

// abbreviations — однобуквенные коды статусов для сводной таблицы.
var abbreviations = map[Status]string{
	StatusApproved:           "A",
	StatusRescheduling:       "R",
	StatusSubmitted:          "S",
	StatusTeamLeaderReviewed: "P",
	StatusHOFReviewed:        "P",
}

// Abbreviation возвращает однобуквенный код статуса для ячейки сводной
// таблицы: A (approved), R (re-scheduling), S (submitted), P (в процессе
// проверки). Неизвестный статус кодируется N, как и отсутствие данных.
func Abbreviation(s Status) string {
	if a, ok := abbreviations[s]; ok {
		return a
	}
	return "N"
}

// Legend возвращает расшифровку однобуквенных кодов статусов.
func Legend() map[string]string {
	return map[string]string{
		"A": "Approved",
		"R": "Re-scheduling",
		"S": "Submitted",
		"P": "In review",
		"N": "No data",
	}
}
