package mysql_test

import (
	"errors"
	"testing"

	"propiedades/internal/domain"
	mysqlrepo "propiedades/internal/storage/mysql"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, id := range []string{"101", "fb:9f2c/ä", "a b&c"} {
		got, err := mysqlrepo.DecodeCursor(mysqlrepo.EncodeCursor(id))
		if err != nil || got != id {
			t.Fatalf("%q: got %q, %v", id, got, err)
		}
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, c := range []string{"***", ""} {
		if _, err := mysqlrepo.DecodeCursor(c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%q: want ErrInvalidInput, got %v", c, err)
		}
	}
}
