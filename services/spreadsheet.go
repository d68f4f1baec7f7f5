package services

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/chiaview/site-backend/models"
)

const contactsSheet = "Contacts"

var contactColumns = []any{"ID", "Received", "Name", "Email", "Phone", "Subject", "Message", "Status", "Priority", "Response", "Replied"}

// ContactsWorkbook renders contacts as an xlsx workbook with one row per contact.
func ContactsWorkbook(contacts []models.Contact) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", contactsSheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}
	if err := f.SetSheetRow(contactsSheet, "A1", &contactColumns); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}

	for i, c := range contacts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		replied := ""
		if c.RepliedAt != nil {
			replied = c.RepliedAt.UTC().Format(time.RFC3339)
		}
		row := []any{
			c.ID.String(),
			c.CreatedAt.UTC().Format(time.RFC3339),
			c.Name,
			c.Email,
			deref(c.Phone),
			c.Subject,
			c.Message,
			c.Status,
			c.Priority,
			deref(c.Response),
			replied,
		}
		if err := f.SetSheetRow(contactsSheet, cell, &row); err != nil {
			return nil, errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err := f.SetPanes(contactsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, errors.Wrap(err, "freezing header")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "encoding workbook")
	}
	return buf, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
