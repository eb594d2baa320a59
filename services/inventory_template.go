package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

const (
	InventorySheet    = "Inventaire"
	InstructionsSheet = "Instructions"
)

var inventoryTemplateHeaders = []string{
	"Nom", "Catégorie", "Référence (SKU)", "Unité", "Quantité", "Quantité minimum",
	"Quantité maximum", "Prix unitaire", "Emplacement", "Notes",
}

var inventoryTemplateInstructions = [][]string{
	{"Colonne", "Description", "Obligatoire"},
	{"Nom", "Nom de l'article", "Oui"},
	{"Catégorie", "Catégorie de l'article (voir les listes de référence)", "Non"},
	{"Référence (SKU)", "Code interne ou fournisseur", "Non"},
	{"Unité", "Unité de mesure (pièce, litre, kg...)", "Non"},
	{"Quantité", "Quantité en stock, nombre entier positif", "Oui"},
	{"Quantité minimum", "Seuil d'alerte de stock bas", "Oui"},
	{"Quantité maximum", "Capacité de stockage", "Non"},
	{"Prix unitaire", "Prix d'achat unitaire, séparateur décimal point", "Non"},
	{"Emplacement", "Lieu de stockage", "Non"},
	{"Notes", "Informations complémentaires", "Non"},
}

var inventoryTemplateExample = []interface{}{
	"Serviettes de bain", "Linge", "LIN-001", "pièce", 120, 40, 200, 8.5, "Lingerie RDC", "",
}

// GenerateImportTemplate builds the xlsx import template. With includeItems the
// data sheet lists the current stock, otherwise a single example row.
func (s *InventoryService) GenerateImportTemplate(ctx context.Context, establishmentID string, includeItems bool) ([]byte, error) {
	var items []models.InventoryItem
	if includeItems {
		var err error
		items, err = s.ListItems(ctx, establishmentID, ItemFilter{})
		if err != nil {
			return nil, err
		}
	}
	data, err := BuildInventoryWorkbook(items)
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to build inventory template")
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Impossible de générer le modèle d'import", err)
	}
	return data, nil
}

// BuildInventoryWorkbook renders the two-sheet workbook.
func BuildInventoryWorkbook(items []models.InventoryItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InventorySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(InstructionsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, InventorySheet, 1, toRow(inventoryTemplateHeaders)); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(inventoryTemplateHeaders), 1)
	if err := f.SetCellStyle(InventorySheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		if err := writeRow(f, InventorySheet, 2, inventoryTemplateExample); err != nil {
			return nil, err
		}
	}
	for i, item := range items {
		var maxQty interface{} = ""
		if item.MaxQuantity != nil {
			maxQty = *item.MaxQuantity
		}
		price, _ := item.UnitPrice.Float64()
		row := []interface{}{
			item.Name, item.Category, item.SKU, item.Unit, item.Quantity, item.MinQuantity,
			maxQty, price, item.Location, item.Notes,
		}
		if err := writeRow(f, InventorySheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(InventorySheet, "A", "J", 18); err != nil {
		return nil, err
	}

	for i, line := range inventoryTemplateInstructions {
		if err := writeRow(f, InstructionsSheet, i+1, toRow(line)); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(InstructionsSheet, "A1", "C1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(InstructionsSheet, "B", "B", 60); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toRow(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
