package sheetsclient

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/tables"
)

// ValuesClient is the subset of Client used to move tables in and out of spreadsheets
type ValuesClient interface {
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
	ClearValues(spreadsheetID, sheetRange string) error
	CreateSheet(spreadsheetID, sheetTitle string) (int64, error)
	SheetTitles(spreadsheetID string) ([]string, error)
}

// ReadTable reads a whole tab as a table. The first row is the header.
func (c *Client) ReadTable(spreadsheetID, tab string) (*tables.Table, error) {
	return ReadTable(c, spreadsheetID, tab)
}

// PublishTable writes a table to a tab, creating the tab or replacing its content
func (c *Client) PublishTable(spreadsheetID, tab string, t *tables.Table) error {
	c.logger.Debug("Publishing table", zap.String("tab", tab), zap.Int("rows", t.NumRows()))
	return PublishTable(c, spreadsheetID, tab, t)
}

// ReadTable reads a whole tab as a table using any values client
func ReadTable(c ValuesClient, spreadsheetID, tab string) (*tables.Table, error) {
	values, err := c.GetValues(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}

	t, err := tables.FromValues(tab, values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tab %s: %w", tab, err)
	}
	return t, nil
}

// PublishTable writes a table to a tab using any values client.
// An existing tab is cleared first so that no rows of a larger previous table remain.
func PublishTable(c ValuesClient, spreadsheetID, tab string, t *tables.Table) error {
	titles, err := c.SheetTitles(spreadsheetID)
	if err != nil {
		return err
	}

	if slices.Contains(titles, tab) {
		if err := c.ClearValues(spreadsheetID, tab); err != nil {
			return fmt.Errorf("failed to clear tab %s: %w", tab, err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tab); err != nil {
			return fmt.Errorf("failed to create tab %s: %w", tab, err)
		}
	}

	if err := c.UpdateValues(spreadsheetID, fmt.Sprintf("%s!A1", tab), t.Values()); err != nil {
		return fmt.Errorf("failed to write tab %s: %w", tab, err)
	}
	return nil
}
