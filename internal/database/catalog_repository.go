package database

import (
	"database/sql"
	"fmt"

	"github.com/herland/laundry-backend/internal/models"
	"github.com/lib/pq"
)

// CatalogRepository handles the service items, shop schedule, and FAQ tables
// that back the services management page.
type CatalogRepository struct {
	db DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetItems retrieves all service items of the given type, sorted by name
func (r *CatalogRepository) GetItems(itemType string) ([]models.ServiceItem, error) {
	query := `
		SELECT id, item_type, name, current_price, previous_price
		FROM service_items
		WHERE item_type = $1
		ORDER BY name
	`

	items := []models.ServiceItem{}
	if err := r.db.Select(&items, query, itemType); err != nil {
		return nil, fmt.Errorf("failed to get service items: %w", err)
	}
	return items, nil
}

// GetItem retrieves a single service item
func (r *CatalogRepository) GetItem(id string) (*models.ServiceItem, error) {
	query := `
		SELECT id, item_type, name, current_price, previous_price
		FROM service_items
		WHERE id = $1
	`

	var item models.ServiceItem
	if err := r.db.Get(&item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new service item
func (r *CatalogRepository) CreateItem(item *models.ServiceItem) error {
	query := `
		INSERT INTO service_items (id, item_type, name, current_price, previous_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(query, item.ID, item.Type, item.Name, item.CurrentPrice, item.PreviousPrice)
	if err != nil {
		return fmt.Errorf("failed to create service item: %w", err)
	}
	return nil
}

// UpdateItemPrice writes the price pair. The caller decides what goes into
// previous_price, so a revert is just an update with the pair swapped.
func (r *CatalogRepository) UpdateItemPrice(id string, currentPrice float64, previousPrice *float64) (*models.ServiceItem, error) {
	query := `
		UPDATE service_items
		SET current_price = $2, previous_price = $3
		WHERE id = $1
		RETURNING id, item_type, name, current_price, previous_price
	`

	var item models.ServiceItem
	if err := r.db.Get(&item, query, id, currentPrice, previousPrice); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes a service item
func (r *CatalogRepository) DeleteItem(id string) error {
	result, err := r.db.Exec(`DELETE FROM service_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// GetSchedule retrieves the single shop schedule row
func (r *CatalogRepository) GetSchedule() (*models.ShopSchedule, error) {
	query := `
		SELECT opens, closes, previous_opens, previous_closes
		FROM shop_schedule
		WHERE id = 1
	`

	var schedule models.ShopSchedule
	if err := r.db.Get(&schedule, query); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// UpdateSchedule upserts the single shop schedule row
func (r *CatalogRepository) UpdateSchedule(schedule *models.ShopSchedule) error {
	query := `
		INSERT INTO shop_schedule (id, opens, closes, previous_opens, previous_closes)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET opens = EXCLUDED.opens,
		    closes = EXCLUDED.closes,
		    previous_opens = EXCLUDED.previous_opens,
		    previous_closes = EXCLUDED.previous_closes
	`

	_, err := r.db.Exec(query, schedule.Opens, schedule.Closes, schedule.PreviousOpens, schedule.PreviousCloses)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	return nil
}

// GetFAQs retrieves all FAQs in display order
func (r *CatalogRepository) GetFAQs() ([]models.FAQ, error) {
	query := `
		SELECT id, question, answer, sort_order
		FROM faqs
		ORDER BY sort_order, id
	`

	faqs := []models.FAQ{}
	if err := r.db.Select(&faqs, query); err != nil {
		return nil, fmt.Errorf("failed to get faqs: %w", err)
	}
	return faqs, nil
}

// SaveFAQ inserts a new FAQ at the end of the order, or updates the text of
// an existing one in place.
func (r *CatalogRepository) SaveFAQ(faq *models.FAQ) error {
	query := `
		INSERT INTO faqs (id, question, answer, sort_order)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM faqs))
		ON CONFLICT (id) DO UPDATE
		SET question = EXCLUDED.question, answer = EXCLUDED.answer
	`

	_, err := r.db.Exec(query, faq.ID, faq.Question, faq.Answer)
	if err != nil {
		return fmt.Errorf("failed to save faq: %w", err)
	}
	return nil
}

// DeleteFAQ removes an FAQ
func (r *CatalogRepository) DeleteFAQ(id string) error {
	result, err := r.db.Exec(`DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete faq: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ReorderFAQs rewrites sort_order to match the position of each id in the
// given sequence. Rows not in the sequence are renumbered after the listed
// ones, keeping their relative order.
func (r *CatalogRepository) ReorderFAQs(orderedIDs []string) error {
	for position, id := range orderedIDs {
		_, err := r.db.Exec(`UPDATE faqs SET sort_order = $2 WHERE id = $1`, id, position+1)
		if err != nil {
			return fmt.Errorf("failed to reorder faqs: %w", err)
		}
	}

	query := `
		UPDATE faqs
		SET sort_order = $1 + ranked.position
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order, id) AS position
			FROM faqs
			WHERE id <> ALL($2)
		) ranked
		WHERE faqs.id = ranked.id
	`
	if _, err := r.db.Exec(query, len(orderedIDs), pq.Array(orderedIDs)); err != nil {
		return fmt.Errorf("failed to reorder faqs: %w", err)
	}

	return nil
}
