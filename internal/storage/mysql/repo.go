package mysql

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"propiedades/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Repo persists processed records and the gate's rejection log.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) UpsertRecord(ctx context.Context, rec domain.PropertyRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	c := rec.Characteristics
	_, err = r.db.ExecContext(ctx, upsertRecordSQL,
		rec.ID,
		valText(rec.SourceURL),
		truncate(rec.Title, 512),
		valText(rec.RawDescription),
		string(rec.Status),
		string(c.PropertyType),
		string(c.OperationType),
		valStr(rec.Location.City),
		valStr(rec.Location.Neighborhood),
		valF64(rec.Price.Value),
		string(rec.Price.Currency),
		rec.Quality.Total,
		rec.ExtractionTimestamp.UTC(),
		string(doc),
	)
	return err
}

func (r *Repo) LogRejection(ctx context.Context, rep domain.RejectionReport) error {
	reasons := rep.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	b, _ := json.Marshal(reasons)
	_, err := r.db.ExecContext(ctx, insertRejectionSQL,
		rep.ID, rep.Stage, string(b), truncate(rep.Title, 512), rep.SeenAt.UTC())
	return err
}

func (r *Repo) GetRecord(ctx context.Context, id string) (domain.PropertyRecord, error) {
	var doc []byte
	if err := r.db.QueryRowContext(ctx, getRecordSQL, id).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PropertyRecord{}, domain.ErrNotFound
		}
		return domain.PropertyRecord{}, err
	}
	var rec domain.PropertyRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return domain.PropertyRecord{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return rec, nil
}

// ListRecords pages by id. The cursor is the opaque form of the last id
// returned; one extra row is read to know whether another page exists.
func (r *Repo) ListRecords(ctx context.Context, q domain.RecordsQuery) (domain.RecordsPage, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	var (
		where []string
		args  []any
	)
	add := func(clause string, v ...any) {
		where = append(where, clause)
		args = append(args, v...)
	}
	if q.City != nil {
		add("city = ?", *q.City)
	}
	if q.PropertyType != nil {
		add("property_type = ?", *q.PropertyType)
	}
	if q.Operation != nil {
		add("operation_type = ?", *q.Operation)
	}
	if q.Status != nil {
		add("status = ?", *q.Status)
	}
	if q.MinPrice != nil {
		add("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		add("price <= ?", *q.MaxPrice)
	}
	if q.Q != nil && strings.TrimSpace(*q.Q) != "" {
		like := "%" + escapeLike(strings.TrimSpace(*q.Q)) + "%"
		add("(title LIKE ? OR description LIKE ? OR neighborhood LIKE ?)", like, like, like)
	}
	if q.Cursor != nil && *q.Cursor != "" {
		after, err := DecodeCursor(*q.Cursor)
		if err != nil {
			return domain.RecordsPage{}, err
		}
		add("id > ?", after)
	}

	stmt := listRecordsPrefix
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += listRecordsSuffix
	args = append(args, q.Limit+1)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return domain.RecordsPage{}, err
	}
	defer rows.Close()

	out := make([]domain.PropertyRecord, 0, q.Limit)
	var lastID string
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return domain.RecordsPage{}, err
		}
		if len(out) == q.Limit {
			next := EncodeCursor(lastID)
			return domain.RecordsPage{Items: out, NextCursor: &next}, nil
		}
		var rec domain.PropertyRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			return domain.RecordsPage{}, fmt.Errorf("decode record %s: %w", id, err)
		}
		out = append(out, rec)
		lastID = id
	}
	if err := rows.Err(); err != nil {
		return domain.RecordsPage{}, err
	}
	return domain.RecordsPage{Items: out}, nil
}

// grouping columns for ByCity, ByType and ByOperation, in that order
var bucketColumns = []string{"city", "property_type", "operation_type"}

func (r *Repo) Stats(ctx context.Context) (domain.Stats, error) {
	var (
		st  domain.Stats
		avg sql.NullFloat64
	)
	if err := r.db.QueryRowContext(ctx, countsSQL).Scan(&st.Total, &st.Accepted, &st.Rejected, &avg); err != nil {
		return domain.Stats{}, err
	}
	if avg.Valid {
		v := round2(avg.Float64)
		st.AvgQuality = &v
	}
	if err := r.db.QueryRowContext(ctx, countRejectionsSQL).Scan(&st.GateRejects); err != nil {
		return domain.Stats{}, err
	}

	buckets := make([][]domain.Bucket, len(bucketColumns))
	for i, col := range bucketColumns {
		b, err := r.buckets(ctx, col)
		if err != nil {
			return domain.Stats{}, fmt.Errorf("stats by %s: %w", col, err)
		}
		buckets[i] = b
	}
	st.ByCity, st.ByType, st.ByOperation = buckets[0], buckets[1], buckets[2]
	return st, nil
}

func (r *Repo) buckets(ctx context.Context, col string) ([]domain.Bucket, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(bucketSQLFmt, col))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Bucket{}
	for rows.Next() {
		var (
			b   domain.Bucket
			avg sql.NullFloat64
		)
		if err := rows.Scan(&b.Key, &b.Count, &avg); err != nil {
			return nil, err
		}
		if avg.Valid {
			v := round2(avg.Float64)
			b.AvgPrice = &v
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// EncodeCursor and DecodeCursor keep ids out of query strings verbatim.
func EncodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func DecodeCursor(c string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(c)
	if err != nil || len(b) == 0 {
		return "", fmt.Errorf("%w: bad cursor", domain.ErrInvalidInput)
	}
	return string(b), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
