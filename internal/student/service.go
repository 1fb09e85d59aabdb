package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"academy-service/internal/reminder"

	"github.com/shopspring/decimal"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrDueNotFound     = errors.New("due not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoUnpaidDues    = errors.New("no unpaid dues")
)

// RegisterRequest creates a student plus its initial schedule. Dates are
// YYYY-MM-DD; Dues supplies optional per-slot date/amount overrides.
type RegisterRequest struct {
	Name             string `json:"name" validate:"required"`
	Mobile           string `json:"mobile" validate:"required"`
	Course           string `json:"course" validate:"required"`
	RegistrationDate string `json:"registrationDate" validate:"required"`
	JoiningDate      string `json:"joiningDate" validate:"required"`
	RegistrationFee  string `json:"registrationFee"`
	TotalDueMonths   int    `json:"totalDueMonths" validate:"min=0"`
	Dues             Edits  `json:"dues"`
}

// UpdateRequest edits a student in place. Blank or malformed fields keep
// their stored values; TotalDueMonths is raw text and falls back to the
// stored count when it does not parse.
type UpdateRequest struct {
	Name             string `json:"name"`
	Mobile           string `json:"mobile"`
	Course           string `json:"course"`
	RegistrationDate string `json:"registrationDate"`
	JoiningDate      string `json:"joiningDate"`
	RegistrationFee  string `json:"registrationFee"`
	TotalDueMonths   string `json:"totalDueMonths"`
	Dues             Edits  `json:"dues"`
}

// ToggleDueRequest carries the collection details recorded when a due is
// marked paid. Both fields are cleared again when the due is unmarked.
type ToggleDueRequest struct {
	CollectedBy   string `json:"collectedBy"`
	PaymentMethod string `json:"paymentMethod"`
}

type ListQuery struct {
	JoinFrom string
	JoinTo   string
	Query    string
	Page     int
	PageSize int
}

// StudentSummary pairs a student with its ordered dues and payment summary.
type StudentSummary struct {
	Student Student `json:"student"`
	Dues    []Due   `json:"dues"`
	Summary Summary `json:"summary"`
}

// Group collects the summaries of students sharing one schedule length.
type Group struct {
	Label    string           `json:"label"`
	Months   int              `json:"months"`
	Students []StudentSummary `json:"students"`
}

type ListResponse struct {
	Groups        []Group `json:"groups"`
	TotalStudents int     `json:"totalStudents"`
	Page          int     `json:"page"`
	PageSize      int     `json:"pageSize"`
}

type StudentDetail struct {
	Student Student `json:"student"`
	Dues    []Due   `json:"dues"`
}

// ReminderEvent is published when the administrator requests a reminder.
type ReminderEvent struct {
	StudentID         int             `json:"studentId"`
	Name              string          `json:"name"`
	Mobile            string          `json:"mobile"`
	InstallmentNumber int             `json:"installmentNumber"`
	Amount            decimal.Decimal `json:"amount"`
	DueDate           time.Time       `json:"dueDate"`
	Link              string          `json:"link"`
}

// EventPublisher abstracts the NATS producer; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, value interface{}) error
}

// AuditRecorder abstracts the action log; nil disables auditing.
type AuditRecorder interface {
	Record(ctx context.Context, action, payload string)
}

type Service interface {
	RegisterStudent(ctx context.Context, req RegisterRequest) (*StudentDetail, error)
	ListSummaries(ctx context.Context, query ListQuery) (*ListResponse, error)
	GetStudent(ctx context.Context, id int) (*StudentDetail, error)
	UpdateStudent(ctx context.Context, id int, req UpdateRequest) (*StudentDetail, error)
	DeleteStudent(ctx context.Context, id int) error
	ToggleRegistrationFee(ctx context.Context, id int) (*Student, error)
	ToggleDue(ctx context.Context, dueID int64, req ToggleDueRequest) (*Due, error)
	SendReminder(ctx context.Context, id int) (*reminder.Reminder, error)
}

type service struct {
	repo      Repository
	reminders *reminder.Builder
	publisher EventPublisher
	audit     AuditRecorder
	logger    *slog.Logger
}

func NewService(repo Repository, reminders *reminder.Builder, publisher EventPublisher, audit AuditRecorder, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		reminders: reminders,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
	}
}

func (s *service) RegisterStudent(ctx context.Context, req RegisterRequest) (*StudentDetail, error) {
	regDate, ok := parseDateField(req.RegistrationDate)
	if !ok {
		return nil, fmt.Errorf("%w: registration date must be YYYY-MM-DD", ErrInvalidInput)
	}
	joinDate, ok := parseDateField(req.JoiningDate)
	if !ok {
		return nil, fmt.Errorf("%w: joining date must be YYYY-MM-DD", ErrInvalidInput)
	}

	fee := decimal.Zero
	if amt, ok := parseAmountField(req.RegistrationFee); ok {
		fee = amt
	}

	st := &Student{
		Name:             req.Name,
		Mobile:           req.Mobile,
		Course:           req.Course,
		RegistrationDate: regDate,
		JoiningDate:      joinDate,
		RegistrationFee:  fee,
		TotalDueMonths:   req.TotalDueMonths,
	}

	dues := InitialSchedule(st, req.Dues)
	st, err := s.repo.CreateStudent(ctx, st, dues)
	if err != nil {
		return nil, err
	}

	s.record(ctx, "add_student", fmt.Sprintf("%d", st.ID))
	return s.detail(ctx, st)
}

func (s *service) ListSummaries(ctx context.Context, query ListQuery) (*ListResponse, error) {
	filter := Filter{Query: query.Query}
	if t, ok := parseDateField(query.JoinFrom); ok {
		filter.JoinFrom = &t
	}
	if t, ok := parseDateField(query.JoinTo); ok {
		filter.JoinTo = &t
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	students, total, err := s.repo.ListStudents(ctx, filter)
	if err != nil {
		return nil, err
	}

	byMonths := make(map[int][]StudentSummary)
	for i := range students {
		st := students[i]
		dues, err := s.repo.ListDues(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		byMonths[st.TotalDueMonths] = append(byMonths[st.TotalDueMonths], StudentSummary{
			Student: st,
			Dues:    dues,
			Summary: Summarize(&st, dues, s.reminders),
		})
	}

	months := make([]int, 0, len(byMonths))
	for m := range byMonths {
		months = append(months, m)
	}
	sort.Ints(months)

	groups := make([]Group, 0, len(months))
	for _, m := range months {
		groups = append(groups, Group{
			Label:    fmt.Sprintf("%d Month(s)", m),
			Months:   m,
			Students: byMonths[m],
		})
	}

	return &ListResponse{
		Groups:        groups,
		TotalStudents: total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *service) GetStudent(ctx context.Context, id int) (*StudentDetail, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, st)
}

func (s *service) UpdateStudent(ctx context.Context, id int, req UpdateRequest) (*StudentDetail, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		st.Name = req.Name
	}
	if req.Mobile != "" {
		st.Mobile = req.Mobile
	}
	if req.Course != "" {
		st.Course = req.Course
	}
	if t, ok := parseDateField(req.RegistrationDate); ok {
		st.RegistrationDate = t
	}
	if t, ok := parseDateField(req.JoiningDate); ok {
		st.JoiningDate = t
	}
	if amt, ok := parseAmountField(req.RegistrationFee); ok {
		st.RegistrationFee = amt
	}
	requestedTotal := ParseRequestedTotal(req.TotalDueMonths, st.TotalDueMonths)
	st.TotalDueMonths = requestedTotal

	dues, err := s.repo.ListDues(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	actions := Reconcile(st, dues, requestedTotal, req.Dues)

	if err := s.repo.UpdateStudent(ctx, st, actions); err != nil {
		return nil, err
	}

	s.record(ctx, "update_student", fmt.Sprintf("%d", st.ID))
	return s.detail(ctx, st)
}

func (s *service) DeleteStudent(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "delete_student", fmt.Sprintf("%d", id))
	return nil
}

func (s *service) ToggleRegistrationFee(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	st.RegistrationFeePaid = !st.RegistrationFeePaid
	if err := s.repo.UpdateStudent(ctx, st, Actions{}); err != nil {
		return nil, err
	}
	s.record(ctx, "toggle_registration_fee", fmt.Sprintf("%d", st.ID))
	return st, nil
}

// ToggleDue flips the paid flag. Marking paid records who collected and
// how; unmarking clears both so the fields are only ever populated on paid
// rows.
func (s *service) ToggleDue(ctx context.Context, dueID int64, req ToggleDueRequest) (*Due, error) {
	if dueID <= 0 {
		return nil, ErrInvalidInput
	}
	due, err := s.repo.GetDue(ctx, dueID)
	if err != nil {
		return nil, err
	}

	if due.Paid {
		due.Paid = false
		due.CollectedBy = ""
		due.PaymentMethod = ""
	} else {
		due.Paid = true
		due.CollectedBy = req.CollectedBy
		due.PaymentMethod = req.PaymentMethod
	}

	if err := s.repo.UpdateDue(ctx, due); err != nil {
		return nil, err
	}

	s.record(ctx, "toggle_due", fmt.Sprintf("%d", due.ID))
	return due, nil
}

func (s *service) SendReminder(ctx context.Context, id int) (*reminder.Reminder, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	dues, err := s.repo.ListDues(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(st, dues, s.reminders)
	if summary.NextUnpaid == nil || summary.Reminder == nil {
		return nil, ErrNoUnpaidDues
	}

	if s.publisher != nil {
		event := ReminderEvent{
			StudentID:         st.ID,
			Name:              st.Name,
			Mobile:            st.Mobile,
			InstallmentNumber: summary.InstallmentNumber,
			Amount:            summary.NextUnpaid.Amount,
			DueDate:           summary.NextUnpaid.DueDate,
			Link:              summary.Reminder.Link,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			// the link is still usable without the event
			s.logger.WarnContext(ctx, "failed to publish reminder event", "student_id", st.ID, "error", err)
		}
	}

	s.record(ctx, "send_reminder", fmt.Sprintf("%d", st.ID))
	return summary.Reminder, nil
}

func (s *service) detail(ctx context.Context, st *Student) (*StudentDetail, error) {
	dues, err := s.repo.ListDues(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	return &StudentDetail{Student: *st, Dues: dues}, nil
}

func (s *service) record(ctx context.Context, action, payload string) {
	if s.audit != nil {
		s.audit.Record(ctx, action, payload)
	}
}

const defaultPageSize = 50
