package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	createBooksTablePostgres = `
		CREATE TABLE IF NOT EXISTS books (
			id     BIGSERIAL PRIMARY KEY,
			title  TEXT    NOT NULL,
			author TEXT    NOT NULL,
			year   INTEGER NOT NULL
		)`

	createBooksTableSQLite = `
		CREATE TABLE IF NOT EXISTS books (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			title  TEXT    NOT NULL,
			author TEXT    NOT NULL,
			year   INTEGER NOT NULL
		)`

	createPagesTable = `
		CREATE TABLE IF NOT EXISTS book_pages (
			book_id     BIGINT  NOT NULL REFERENCES books (id),
			page_number INTEGER NOT NULL,
			body        TEXT    NOT NULL
		)`

	createPagesIndex = `CREATE INDEX IF NOT EXISTS book_pages_book_id_idx ON book_pages (book_id)`
)

// SQLStore is an sqlx-backed Storage implementation. It works against
// Postgres (github.com/lib/pq) and SQLite (modernc.org/sqlite); queries are
// written with "?" bindvars and rebound per driver.
type SQLStore struct {
	db *sqlx.DB
}

var _ Storage = (*SQLStore)(nil)

func NewSQLStore(db *sqlx.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil database connection supplied")
	}

	return &SQLStore{db: db}, nil
}

// CreateSchema creates the books tables if they do not exist yet, in the
// dialect of the connected driver.
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	booksTable := createBooksTablePostgres
	if s.db.DriverName() == "sqlite" {
		booksTable = createBooksTableSQLite
	}

	for _, ddl := range []string{booksTable, createPagesTable, createPagesIndex} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating books schema: %w", err)
		}
	}

	return nil
}

// Insert stores the book and its pages in one transaction and returns the
// assigned id.
func (s *SQLStore) Insert(ctx context.Context, book *Book) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := s.insertBookRow(ctx, tx, book)
	if err != nil {
		return 0, fmt.Errorf("inserting book: %w", err)
	}

	insertPage := s.db.Rebind(`INSERT INTO book_pages (book_id, page_number, body) VALUES (?, ?, ?)`)
	for _, page := range book.Pages {
		if _, err = tx.ExecContext(ctx, insertPage, id, page.Number, page.Body); err != nil {
			return 0, fmt.Errorf("inserting page %d: %w", page.Number, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing insert transaction: %w", err)
	}

	return id, nil
}

// insertBookRow writes the books row. Postgres has no usable LastInsertId,
// so the id comes back through a RETURNING clause there.
func (s *SQLStore) insertBookRow(ctx context.Context, tx *sqlx.Tx, book *Book) (int64, error) {
	if s.db.DriverName() == "sqlite" {
		result, err := tx.ExecContext(ctx,
			s.db.Rebind(`INSERT INTO books (title, author, year) VALUES (?, ?, ?)`),
			book.Title, book.Author, book.Year)
		if err != nil {
			return 0, err
		}

		return result.LastInsertId()
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		s.db.Rebind(`INSERT INTO books (title, author, year) VALUES (?, ?, ?) RETURNING id`),
		book.Title, book.Author, book.Year).Scan(&id)

	return id, err
}

// FindByID loads the book with its pages, or reports ErrBookNotFound.
func (s *SQLStore) FindByID(ctx context.Context, id int64) (*Book, error) {
	var book Book
	err := s.db.GetContext(ctx, &book,
		s.db.Rebind(`SELECT id, title, author, year FROM books WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("querying book: %w", err)
	}

	book.Pages = []Page{}
	err = s.db.SelectContext(ctx, &book.Pages,
		s.db.Rebind(`SELECT page_number, body FROM book_pages WHERE book_id = ? ORDER BY page_number`), id)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}

	return &book, nil
}

// List returns one slice of the catalog ordered by id, pages included.
func (s *SQLStore) List(ctx context.Context, offset int, limit int) ([]Book, error) {
	result := []Book{}
	err := s.db.SelectContext(ctx, &result,
		s.db.Rebind(`SELECT id, title, author, year FROM books ORDER BY id LIMIT ? OFFSET ?`),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}

	if len(result) == 0 {
		return result, nil
	}

	ids := make([]int64, len(result))
	byID := make(map[int64]*Book, len(result))
	for i := range result {
		result[i].Pages = []Page{}
		ids[i] = result[i].ID
		byID[result[i].ID] = &result[i]
	}

	query, args, err := sqlx.In(
		`SELECT book_id, page_number, body FROM book_pages WHERE book_id IN (?) ORDER BY book_id, page_number`, ids)
	if err != nil {
		return nil, fmt.Errorf("building pages query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var bookID int64
		var page Page
		if err = rows.Scan(&bookID, &page.Number, &page.Body); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}

		if book, ok := byID[bookID]; ok {
			book.Pages = append(book.Pages, page)
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}

	return result, nil
}

// Update changes title and year in place. An unknown id reports
// ErrBookNotFound.
func (s *SQLStore) Update(ctx context.Context, id int64, title string, year int) error {
	result, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE books SET title = ?, year = ? WHERE id = ?`), title, year, id)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading update result: %w", err)
	}

	if affected == 0 {
		return ErrBookNotFound
	}

	return nil
}

// Delete removes the book and its pages in one transaction. An unknown id
// reports ErrBookNotFound.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM book_pages WHERE book_id = ?`), id); err != nil {
		return fmt.Errorf("deleting pages: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM books WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading delete result: %w", err)
	}

	if affected == 0 {
		return ErrBookNotFound
	}

	return tx.Commit()
}
