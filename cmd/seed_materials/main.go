// seed_materials carga el catálogo de materias primas de una empresa desde un CSV exportado
// de la hoja de cálculo de compras (separador ';', columnas sku;nombre;unidad;minimo).
//
// Uso: go run ./cmd/seed_materials -company <uuid> [-latin1] materiales.csv
// Usa la misma configuración (DB_DRIVER, DB_HOST, ...) que la API.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/bootstrap"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "empresa dueña del catálogo")
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1 (export de Excel)")
	flag.Parse()

	if *companyID == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_materials -company <uuid> [-latin1] archivo.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := parseMaterials(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_materials"})

	ctx := context.Background()
	svc, err := bootstrap.Build(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	created, skipped := 0, 0
	for _, r := range rows {
		_, err := svc.Materials.Create(ctx, *companyID, r)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		default:
			log.Error().Err(err).Str("sku", r.SKU).Str("name", r.Name).Msg("material no creado")
		}
	}
	fmt.Printf("Materiales: %d creados, %d ya existían, %d en el archivo\n", created, skipped, len(rows))
}

// parseMaterials lee sku;nombre;unidad;minimo. La primera fila es encabezado; mínimo vacío = sin nivel.
func parseMaterials(r io.Reader) ([]dto.CreateMaterialRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := make([]dto.CreateMaterialRequest, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 3 columnas", line)
		}
		req := dto.CreateMaterialRequest{
			SKU:  strings.TrimSpace(rec[0]),
			Name: strings.TrimSpace(rec[1]),
			Unit: strings.TrimSpace(rec[2]),
		}
		if req.Name == "" || req.Unit == "" {
			return nil, fmt.Errorf("línea %d: nombre y unidad son obligatorios", line)
		}
		if len(rec) > 3 {
			if raw := strings.ReplaceAll(strings.TrimSpace(rec[3]), ",", "."); raw != "" {
				minLevel, err := decimal.NewFromString(raw)
				if err != nil || minLevel.IsNegative() {
					return nil, fmt.Errorf("línea %d: mínimo inválido %q", line, rec[3])
				}
				req.MinLevel = &minLevel
			}
		}
		out = append(out, req)
	}
	return out, nil
}
