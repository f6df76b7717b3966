package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gradplan/planner-backend/internal/model"
)

// SemesterLectureRepository handles lecture enrollments.
type SemesterLectureRepository interface {
	GetByID(ctx context.Context, id int) (*model.SemesterLecture, error)
	ListBySemesters(ctx context.Context, semesterIDs []int) ([]*model.SemesterLecture, error)
	// Create inserts the enrollment at the end of the semester's sequence.
	Create(ctx context.Context, sl *model.SemesterLecture) error
	Update(ctx context.Context, sl *model.SemesterLecture) error
	Delete(ctx context.Context, id int) error
	// BulkUpdate writes the classification and credit of every enrollment in one statement.
	BulkUpdate(ctx context.Context, lectures []*model.SemesterLecture) error
	// BulkCreate copies enrollments verbatim. IDs are assigned by the store and not read back.
	BulkCreate(ctx context.Context, lectures []*model.SemesterLecture) error
}

type semesterLectureRepository struct {
	db DBTX
}

const semesterLectureColumns = `id, semester_id, lecture_id, lecture_type, recognized_major1, lecture_type1,
	recognized_major2, lecture_type2, credit, recent_sequence, is_modified, created_at, updated_at`

func scanSemesterLecture(row rowScanner) (*model.SemesterLecture, error) {
	sl := &model.SemesterLecture{}
	err := row.Scan(&sl.ID, &sl.SemesterID, &sl.LectureID, &sl.LectureType,
		&sl.RecognizedMajor1, &sl.LectureType1, &sl.RecognizedMajor2, &sl.LectureType2,
		&sl.Credit, &sl.RecentSequence, &sl.IsModified, &sl.CreatedAt, &sl.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return sl, nil
}

func (r *semesterLectureRepository) GetByID(ctx context.Context, id int) (*model.SemesterLecture, error) {
	return scanSemesterLecture(r.db.QueryRow(ctx,
		`SELECT `+semesterLectureColumns+` FROM semester_lectures WHERE id = $1`, id))
}

func (r *semesterLectureRepository) ListBySemesters(ctx context.Context, semesterIDs []int) ([]*model.SemesterLecture, error) {
	if len(semesterIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+semesterLectureColumns+` FROM semester_lectures
		 WHERE semester_id = ANY($1::int[])
		 ORDER BY semester_id, recent_sequence, id`, semesterIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lectures []*model.SemesterLecture
	for rows.Next() {
		sl, err := scanSemesterLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, sl)
	}
	return lectures, rows.Err()
}

func (r *semesterLectureRepository) Create(ctx context.Context, sl *model.SemesterLecture) error {
	query := `
		INSERT INTO semester_lectures (semester_id, lecture_id, lecture_type, recognized_major1, lecture_type1,
			recognized_major2, lecture_type2, credit, is_modified, recent_sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(recent_sequence), 0) + 1 FROM semester_lectures WHERE semester_id = $1))
		RETURNING id, recent_sequence, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, sl.SemesterID, sl.LectureID, sl.LectureType,
		sl.RecognizedMajor1, sl.LectureType1, sl.RecognizedMajor2, sl.LectureType2,
		sl.Credit, sl.IsModified).
		Scan(&sl.ID, &sl.RecentSequence, &sl.CreatedAt, &sl.UpdatedAt)
}

func (r *semesterLectureRepository) Update(ctx context.Context, sl *model.SemesterLecture) error {
	query := `
		UPDATE semester_lectures
		SET lecture_type = $1, recognized_major1 = $2, lecture_type1 = $3,
		    recognized_major2 = $4, lecture_type2 = $5, credit = $6, is_modified = $7,
		    updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, sl.LectureType, sl.RecognizedMajor1, sl.LectureType1,
		sl.RecognizedMajor2, sl.LectureType2, sl.Credit, sl.IsModified, sl.ID).
		Scan(&sl.UpdatedAt)
	return notFound(err)
}

func (r *semesterLectureRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM semester_lectures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *semesterLectureRepository) BulkUpdate(ctx context.Context, lectures []*model.SemesterLecture) error {
	n := len(lectures)
	if n == 0 {
		return nil
	}

	ids := make([]int, 0, n)
	types := make([]string, 0, n)
	major1 := make([]int, 0, n)
	types1 := make([]string, 0, n)
	major2 := make([]int, 0, n)
	types2 := make([]string, 0, n)
	credits := make([]int, 0, n)
	for _, sl := range lectures {
		ids = append(ids, sl.ID)
		types = append(types, string(sl.LectureType))
		major1 = append(major1, sl.RecognizedMajor1)
		types1 = append(types1, string(sl.LectureType1))
		major2 = append(major2, sl.RecognizedMajor2)
		types2 = append(types2, string(sl.LectureType2))
		credits = append(credits, sl.Credit)
	}

	query := `
		UPDATE semester_lectures AS s
		SET lecture_type = t.lecture_type,
		    recognized_major1 = t.major1,
		    lecture_type1 = t.type1,
		    recognized_major2 = t.major2,
		    lecture_type2 = t.type2,
		    credit = t.credit,
		    updated_at = NOW()
		FROM UNNEST(
			$1::int[],
			$2::text[],
			$3::int[],
			$4::text[],
			$5::int[],
			$6::text[],
			$7::int[]
		) AS t (id, lecture_type, major1, type1, major2, type2, credit)
		WHERE s.id = t.id
	`
	_, err := r.db.Exec(ctx, query, ids, types, major1, types1, major2, types2, credits)
	return err
}

func (r *semesterLectureRepository) BulkCreate(ctx context.Context, lectures []*model.SemesterLecture) error {
	if len(lectures) == 0 {
		return nil
	}
	_, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"semester_lectures"},
		[]string{"semester_id", "lecture_id", "lecture_type", "recognized_major1", "lecture_type1",
			"recognized_major2", "lecture_type2", "credit", "recent_sequence", "is_modified"},
		pgx.CopyFromSlice(len(lectures), func(i int) ([]any, error) {
			sl := lectures[i]
			return []any{sl.SemesterID, sl.LectureID, string(sl.LectureType), sl.RecognizedMajor1,
				string(sl.LectureType1), sl.RecognizedMajor2, string(sl.LectureType2),
				sl.Credit, sl.RecentSequence, sl.IsModified}, nil
		}),
	)
	return err
}
