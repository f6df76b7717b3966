package repository

import (
	"context"

	"github.com/gradplan/planner-backend/internal/model"
)

// CatalogRepository reads the reference catalog. It never writes.
type CatalogRepository interface {
	GetMajor(ctx context.Context, id int) (*model.Major, error)
	GetMajorByNameType(ctx context.Context, name string, majorType model.MajorType) (*model.Major, error)
	GetLecture(ctx context.Context, id int) (*model.Lecture, error)
	ListMajorLectures(ctx context.Context, majorIDs, lectureIDs []int) ([]model.MajorLecture, error)
	ListLectureCredits(ctx context.Context, lectureIDs []int) ([]model.LectureCredit, error)
	// ListRequirements returns the requirements of the majors valid for entranceYear.
	ListRequirements(ctx context.Context, majorIDs []int, entranceYear int) ([]model.Requirement, error)
}

type catalogRepository struct {
	db DBTX
}

func (r *catalogRepository) GetMajor(ctx context.Context, id int) (*model.Major, error) {
	m := &model.Major{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, major_type, created_at, updated_at FROM majors WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Type, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *catalogRepository) GetMajorByNameType(ctx context.Context, name string, majorType model.MajorType) (*model.Major, error) {
	m := &model.Major{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, major_type, created_at, updated_at FROM majors WHERE name = $1 AND major_type = $2`,
		name, majorType).
		Scan(&m.ID, &m.Name, &m.Type, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *catalogRepository) GetLecture(ctx context.Context, id int) (*model.Lecture, error) {
	l := &model.Lecture{}
	err := r.db.QueryRow(ctx,
		`SELECT id, code, name, department, lecture_type, credit, recent_open_year FROM lectures WHERE id = $1`, id).
		Scan(&l.ID, &l.Code, &l.Name, &l.Department, &l.LectureType, &l.Credit, &l.RecentOpenYear)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (r *catalogRepository) ListMajorLectures(ctx context.Context, majorIDs, lectureIDs []int) ([]model.MajorLecture, error) {
	if len(majorIDs) == 0 || len(lectureIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, major_id, lecture_id, start_year, end_year, lecture_type, is_required
		 FROM major_lectures
		 WHERE major_id = ANY($1::int[]) AND lecture_id = ANY($2::int[])`,
		majorIDs, lectureIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []model.MajorLecture
	for rows.Next() {
		var l model.MajorLecture
		if err := rows.Scan(&l.ID, &l.MajorID, &l.LectureID, &l.StartYear, &l.EndYear, &l.LectureType, &l.IsRequired); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *catalogRepository) ListLectureCredits(ctx context.Context, lectureIDs []int) ([]model.LectureCredit, error) {
	if len(lectureIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, lecture_id, start_year, end_year, credit
		 FROM lecture_credits
		 WHERE lecture_id = ANY($1::int[])`, lectureIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []model.LectureCredit
	for rows.Next() {
		var c model.LectureCredit
		if err := rows.Scan(&c.ID, &c.LectureID, &c.StartYear, &c.EndYear, &c.Credit); err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

func (r *catalogRepository) ListRequirements(ctx context.Context, majorIDs []int, entranceYear int) ([]model.Requirement, error) {
	if len(majorIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, major_id, requirement_type, start_year, end_year, required_credit, description
		 FROM requirements
		 WHERE major_id = ANY($1::int[]) AND start_year <= $2 AND end_year >= $2
		 ORDER BY id`, majorIDs, entranceYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []model.Requirement
	for rows.Next() {
		var req model.Requirement
		if err := rows.Scan(&req.ID, &req.MajorID, &req.RequirementType, &req.StartYear, &req.EndYear,
			&req.RequiredCredit, &req.Description); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
