package exams

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. Question references live in the
// prova_questoes child table, keyed by (id_prova, posicao).
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the exam and its ordered question references in one
// transaction.
func (r *PGRepo) Create(ctx context.Context, exam Exam) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertExam = `
INSERT INTO provas (id, id_usuario, titulo, descricao, ano, disciplina, ativo, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)`
	if _, err := tx.ExecContext(ctx, insertExam,
		exam.ID,
		exam.UserID,
		exam.Title,
		exam.Description,
		exam.Year,
		exam.Discipline,
		exam.CreatedAt,
		exam.UpdatedAt,
	); err != nil {
		return err
	}

	if err := insertRefs(ctx, tx, exam.ID, exam.Questions); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns one active exam with its question references in order.
func (r *PGRepo) GetByID(ctx context.Context, userID, examID string) (Exam, error) {
	const query = `
SELECT id, id_usuario, titulo, descricao, ano, disciplina, ativo, created_at, updated_at
FROM provas
WHERE id = $1 AND id_usuario = $2 AND ativo
LIMIT 1`

	var e Exam
	err := r.DB.QueryRowContext(ctx, query, examID, userID).Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Description,
		&e.Year,
		&e.Discipline,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrNotFound
		}
		return Exam{}, err
	}

	refs, err := loadRefs(ctx, r.DB, e.ID)
	if err != nil {
		return Exam{}, err
	}
	e.Questions = refs
	return e, nil
}

// ListByUser returns active exams for a user, newest first. References are
// not loaded; list views show metadata only.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Exam, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, id_usuario, titulo, descricao, ano, disciplina, ativo, created_at, updated_at
FROM provas
WHERE id_usuario = $1 AND ativo
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exam
	for rows.Next() {
		var e Exam
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Title,
			&e.Description,
			&e.Year,
			&e.Discipline,
			&e.Active,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites the exam row and replaces its question references.
func (r *PGRepo) Update(ctx context.Context, exam Exam) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const update = `
UPDATE provas
SET titulo = $1,
    descricao = $2,
    ano = $3,
    disciplina = $4,
    updated_at = $5
WHERE id = $6 AND id_usuario = $7 AND ativo`

	res, err := tx.ExecContext(ctx, update,
		exam.Title,
		exam.Description,
		exam.Year,
		exam.Discipline,
		exam.UpdatedAt,
		exam.ID,
		exam.UserID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM prova_questoes WHERE id_prova = $1`, exam.ID); err != nil {
		return err
	}
	if err := insertRefs(ctx, tx, exam.ID, exam.Questions); err != nil {
		return err
	}
	return tx.Commit()
}

// SoftDelete flips ativo off. The row and its references stay behind.
func (r *PGRepo) SoftDelete(ctx context.Context, userID, examID string) error {
	const query = `
UPDATE provas
SET ativo = FALSE,
    updated_at = now()
WHERE id = $1 AND id_usuario = $2 AND ativo`

	res, err := r.DB.ExecContext(ctx, query, examID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)

func insertRefs(ctx context.Context, tx *sql.Tx, examID string, refs []QuestionRef) error {
	const insert = `
INSERT INTO prova_questoes (id_prova, posicao, ano, indice)
VALUES ($1, $2, $3, $4)`
	for i, ref := range refs {
		if _, err := tx.ExecContext(ctx, insert, examID, i+1, ref.Year, ref.Index); err != nil {
			return err
		}
	}
	return nil
}

func loadRefs(ctx context.Context, db *sql.DB, examID string) ([]QuestionRef, error) {
	const query = `
SELECT ano, indice
FROM prova_questoes
WHERE id_prova = $1
ORDER BY posicao`

	rows, err := db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []QuestionRef
	for rows.Next() {
		var ref QuestionRef
		if err := rows.Scan(&ref.Year, &ref.Index); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
