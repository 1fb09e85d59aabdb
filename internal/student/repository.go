package student

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Filter narrows the student listing. JoinFrom/JoinTo bound the joining
// date (inclusive); Query matches name or mobile, case-insensitive.
type Filter struct {
	JoinFrom *time.Time
	JoinTo   *time.Time
	Query    string
	Limit    int
	Offset   int
}

type Repository interface {
	CreateStudent(ctx context.Context, st *Student, dues []Due) (*Student, error)
	ListStudents(ctx context.Context, filter Filter) ([]Student, int, error)
	GetStudent(ctx context.Context, id int) (*Student, error)
	UpdateStudent(ctx context.Context, st *Student, actions Actions) error
	DeleteStudent(ctx context.Context, id int) error
	ListDues(ctx context.Context, studentID int) ([]Due, error)
	GetDue(ctx context.Context, id int64) (*Due, error)
	UpdateDue(ctx context.Context, due *Due) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

// CreateStudent inserts the student and its initial schedule in one
// transaction so a failed due insert does not leave a half-registered
// student behind.
func (r *repository) CreateStudent(ctx context.Context, st *Student, dues []Due) (*Student, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(st).Returning("*").Exec(ctx); err != nil {
			return err
		}
		for i := range dues {
			dues[i].StudentID = st.ID
		}
		if len(dues) > 0 {
			if _, err := tx.NewInsert().Model(&dues).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *repository) ListStudents(ctx context.Context, filter Filter) ([]Student, int, error) {
	var students []Student
	q := r.db.NewSelect().Model(&students).Order("id DESC")

	if filter.JoinFrom != nil {
		q = q.Where("joining_date >= ?", *filter.JoinFrom)
	}
	if filter.JoinTo != nil {
		q = q.Where("joining_date <= ?", *filter.JoinTo)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name ILIKE ?", pattern).WhereOr("mobile ILIKE ?", pattern)
		})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *repository) GetStudent(ctx context.Context, id int) (*Student, error) {
	st := new(Student)
	err := r.db.NewSelect().Model(st).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return st, nil
}

// UpdateStudent persists the student row and applies the reconciled
// schedule actions atomically; a storage failure rolls everything back.
func (r *repository) UpdateStudent(ctx context.Context, st *Student, actions Actions) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().Model(st).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrStudentNotFound
		}

		if len(actions.Delete) > 0 {
			if _, err := tx.NewDelete().Model((*Due)(nil)).Where("id IN (?)", bun.In(actions.Delete)).Exec(ctx); err != nil {
				return err
			}
		}
		if len(actions.Create) > 0 {
			creates := actions.Create
			if _, err := tx.NewInsert().Model(&creates).Exec(ctx); err != nil {
				return err
			}
		}
		for i := range actions.Update {
			if _, err := tx.NewUpdate().Model(&actions.Update[i]).WherePK().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteStudent removes the student and all its dues.
func (r *repository) DeleteStudent(ctx context.Context, id int) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Due)(nil)).Where("student_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		result, err := tx.NewDelete().Model((*Student)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrStudentNotFound
		}
		return nil
	})
}

// ListDues returns a student's dues ordered by due date; ties keep
// insertion order so installment numbering stays stable.
func (r *repository) ListDues(ctx context.Context, studentID int) ([]Due, error) {
	var dues []Due
	err := r.db.NewSelect().
		Model(&dues).
		Where("student_id = ?", studentID).
		Order("due_date ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return dues, nil
}

func (r *repository) GetDue(ctx context.Context, id int64) (*Due, error) {
	due := new(Due)
	err := r.db.NewSelect().Model(due).Where("d.id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDueNotFound
		}
		return nil, err
	}
	return due, nil
}

func (r *repository) UpdateDue(ctx context.Context, due *Due) error {
	result, err := r.db.NewUpdate().Model(due).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrDueNotFound
	}
	return nil
}
