package db

import (
	"database/sql"
	"errors"
	"fmt"

	"searchrank/models"
)

// ErrNotFound is returned when a document id or URL has no row.
var ErrNotFound = errors.New("db: document not found")

const documentColumns = `doc_id, url, title, meta_description, meta_keywords, visible_text, language, quality_score, click_count, last_updated`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.URL,
		&doc.Title,
		&doc.MetaDescription,
		&doc.MetaKeywords,
		&doc.VisibleText,
		&doc.Language,
		&doc.QualityScore,
		&doc.ClickCount,
		&doc.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// InsertIfAbsent inserts a new document, or returns the id of the existing
// row when the URL is already stored. The second return value reports
// whether a new row was created; the loser of an insert race gets
// inserted=false and must read back the existing record.
func (db *DB) InsertIfAbsent(doc *models.Document) (int64, bool, error) {
	if err := doc.Validate(); err != nil {
		return 0, false, err
	}

	result, err := db.Exec(`
		INSERT INTO documents (url, title, meta_description, meta_keywords, visible_text, language, quality_score, click_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, doc.URL, doc.Title, doc.MetaDescription, doc.MetaKeywords, doc.VisibleText, doc.Language, doc.QualityScore, doc.ClickCount)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check insert result: %w", err)
	}

	if affected == 0 {
		var existingID int64
		err := db.QueryRow("SELECT doc_id FROM documents WHERE url = ?", doc.URL).Scan(&existingID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to read back existing document: %w", err)
		}
		return existingID, false, nil
	}

	docID, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get document ID: %w", err)
	}
	return docID, true, nil
}

// FindByURL fetches a document by its URL, or ErrNotFound.
func (db *DB) FindByURL(url string) (*models.Document, error) {
	doc, err := scanDocument(db.QueryRow(
		"SELECT "+documentColumns+" FROM documents WHERE url = ?", url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document by URL: %w", err)
	}
	return doc, nil
}

// FindByID fetches a document by its id, or ErrNotFound.
func (db *DB) FindByID(id int64) (*models.Document, error) {
	doc, err := scanDocument(db.QueryRow(
		"SELECT "+documentColumns+" FROM documents WHERE doc_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document by ID: %w", err)
	}
	return doc, nil
}

// UpdateContent replaces a document's crawled fields and cached quality
// score, refreshing last_updated.
func (db *DB) UpdateContent(id int64, page *models.PageContent, qualityScore float64) error {
	result, err := db.Exec(`
		UPDATE documents
		SET title = ?, meta_description = ?, meta_keywords = ?, visible_text = ?, language = ?,
		    quality_score = ?, last_updated = CURRENT_TIMESTAMP
		WHERE doc_id = ?
	`, page.Title, page.MetaDescription, page.MetaKeywords, page.VisibleText, page.Language, qualityScore, id)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClickCount atomically bumps a document's click count and returns
// the new value.
func (db *DB) IncrementClickCount(id int64) (int64, error) {
	result, err := db.Exec(`
		UPDATE documents
		SET click_count = click_count + 1, last_updated = CURRENT_TIMESTAMP
		WHERE doc_id = ?
	`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment click count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	var count int64
	if err := db.QueryRow("SELECT click_count FROM documents WHERE doc_id = ?", id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to read click count: %w", err)
	}
	return count, nil
}

// ListAll returns every stored document.
func (db *DB) ListAll() ([]models.Document, error) {
	rows, err := db.Query("SELECT " + documentColumns + " FROM documents ORDER BY doc_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}
