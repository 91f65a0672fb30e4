//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"propiedades/internal/domain"
	mysqlrepo "propiedades/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=propiedades",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/propiedades?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func record(id, city string, pt domain.PropertyType, op domain.OperationType, price float64, q float64) domain.PropertyRecord {
	return domain.PropertyRecord{
		ID:                  id,
		Title:               "Casa " + id,
		RawDescription:      "Casa en " + city + " con jardín",
		ExtractionTimestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Status:              domain.StatusAccepted,
		Price:               domain.ExtractedPrice{Value: pfloat(price), Currency: domain.CurrencyMXN, IsValid: true},
		Location:            domain.Location{City: pstr(city), References: []string{}},
		Characteristics:     domain.Characteristics{PropertyType: pt, OperationType: op, Condition: domain.ConditionUnspecified},
		Amenities:           domain.Amenities{Other: []string{}},
		Quality:             domain.QualityScore{Total: q},
		ValidationErrors:    []string{},
		Metadata:            domain.RecordMetadata{Errors: []string{}},
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	seed := []domain.PropertyRecord{
		record("a1", "Cuernavaca", domain.PropertyHouse, domain.OperationSale, 2_500_000, 80),
		record("a2", "Cuernavaca", domain.PropertyApartment, domain.OperationRent, 8_500, 60),
		record("a3", "Jiutepec", domain.PropertyLand, domain.OperationSale, 900_000, 40),
	}
	bad := record("a4", "Cuernavaca", domain.PropertyHouse, domain.OperationUnknown, 0, 10)
	bad.Status = domain.StatusRejected
	bad.Price.Value = nil
	bad.ValidationErrors = []string{"operation_type: unknown"}
	seed = append(seed, bad)

	for _, r := range seed {
		if err := repo.UpsertRecord(ctx, r); err != nil {
			t.Fatalf("UpsertRecord %s: %v", r.ID, err)
		}
	}
	// re-upsert replaces in place
	seed[0].Title = "Casa a1 remodelada"
	if err := repo.UpsertRecord(ctx, seed[0]); err != nil {
		t.Fatalf("UpsertRecord again: %v", err)
	}

	got, err := repo.GetRecord(ctx, "a1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.Title != "Casa a1 remodelada" || got.Price.Value == nil || *got.Price.Value != 2_500_000 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if _, err := repo.GetRecord(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	// filters
	city := "Cuernavaca"
	status := "accepted"
	page, err := repo.ListRecords(ctx, domain.RecordsQuery{City: &city, Status: &status, Limit: 10})
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor != nil {
		t.Fatalf("city filter: %+v", page)
	}
	page, _ = repo.ListRecords(ctx, domain.RecordsQuery{MinPrice: pfloat(500_000), MaxPrice: pfloat(1_000_000), Limit: 10})
	if len(page.Items) != 1 || page.Items[0].ID != "a3" {
		t.Fatalf("price filter: %+v", page.Items)
	}
	q := "remodelada"
	page, _ = repo.ListRecords(ctx, domain.RecordsQuery{Q: &q, Limit: 10})
	if len(page.Items) != 1 || page.Items[0].ID != "a1" {
		t.Fatalf("text filter: %+v", page.Items)
	}

	// keyset paging walks every row once
	var seen []string
	var cursor *string
	for {
		p, err := repo.ListRecords(ctx, domain.RecordsQuery{Limit: 3, Cursor: cursor})
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		for _, r := range p.Items {
			seen = append(seen, r.ID)
		}
		if p.NextCursor == nil {
			break
		}
		cursor = p.NextCursor
	}
	if fmt.Sprint(seen) != "[a1 a2 a3 a4]" {
		t.Fatalf("paging order: %v", seen)
	}

	// rejection log counts repeat sightings once
	rep := domain.RejectionReport{ID: "x1", Stage: "validity_gate", Reasons: []string{"veto:iphone"}, Title: "iPhone 12", SeenAt: time.Now()}
	for i := 0; i < 2; i++ {
		if err := repo.LogRejection(ctx, rep); err != nil {
			t.Fatalf("LogRejection: %v", err)
		}
	}

	st, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 4 || st.Accepted != 3 || st.Rejected != 1 || st.GateRejects != 1 {
		t.Fatalf("counts: %+v", st)
	}
	if st.AvgQuality == nil || *st.AvgQuality != 60 {
		t.Fatalf("avg quality: %v", st.AvgQuality)
	}
	if len(st.ByCity) != 2 || st.ByCity[0].Key != "Cuernavaca" || st.ByCity[0].Count != 2 {
		t.Fatalf("by city: %+v", st.ByCity)
	}
	if len(st.ByOperation) != 2 {
		t.Fatalf("by operation: %+v", st.ByOperation)
	}
}
