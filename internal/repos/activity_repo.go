package repos

import (
	"github.com/jmoiron/sqlx"
)

type Activity struct {
	ID        int64  `db:"id"`
	Action    string `db:"action"`
	Entity    string `db:"entity"`
	EntityID  string `db:"entity_id"`
	Detail    string `db:"detail"`
	Outcome   string `db:"outcome"`
	CreatedAt string `db:"created_at"`
}

type ActivityRepo struct{ db *sqlx.DB }

func NewActivityRepo(db *sqlx.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Record(action, entity, entityID, detail string, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if detail == "" {
			detail = err.Error()
		}
	}
	_, dberr := r.db.Exec(`
  INSERT INTO activity(action, entity, entity_id, detail, outcome)
  VALUES (?,?,?,?,?)
`, action, entity, entityID, detail, outcome)
	return dberr
}

func (r *ActivityRepo) ListLatest(limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Activity
	err := r.db.Select(&out, `
  SELECT
    id, action, entity, COALESCE(entity_id,'') AS entity_id,
    COALESCE(detail,'') AS detail, outcome, created_at
  FROM activity
  ORDER BY id DESC
  LIMIT ?
`, limit)
	return out, err
}
