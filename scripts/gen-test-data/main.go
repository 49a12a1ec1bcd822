// Command gen-test-data renders sample medical leave certificates as PDFs
// for exercising the extraction endpoint by hand. Each variant stresses a
// different normalization path: clean input, dotted national ids, slash
// dates, and free-text dates the parser cannot resolve.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

type fixture struct {
	Filename      string
	ProfessorName string
	NationalID    string
	Diagnosis     string
	RestDays      string
	StartDate     string
	EndDate       string
	Issuer        string
}

var fixtures = []fixture{
	{
		Filename:      "licencia_clean.pdf",
		ProfessorName: "María Torres Fuentes",
		NationalID:    "12345678-K",
		Diagnosis:     "J06.9",
		RestDays:      "5",
		StartDate:     "05-03-2025",
		EndDate:       "09-03-2025",
		Issuer:        "COMPIN",
	},
	{
		Filename:      "licencia_dotted_rut.pdf",
		ProfessorName: "Luis Soto Rivas",
		NationalID:    "9.876.543-2",
		Diagnosis:     "M54.5",
		RestDays:      "10",
		StartDate:     "12-06-2025",
		EndDate:       "21-06-2025",
		Issuer:        "ISAPRE Consalud",
	},
	{
		Filename:      "licencia_slash_dates.pdf",
		ProfessorName: "Carla Núñez Pardo",
		NationalID:    "15.222.333-4",
		Diagnosis:     "",
		RestDays:      "3",
		StartDate:     "01/09/2025",
		EndDate:       "03/09/2025",
		Issuer:        "FONASA",
	},
	{
		Filename:      "licencia_texto_fecha.pdf",
		ProfessorName: "Pedro Raimilla Calbún",
		NationalID:    "8.111.222-9",
		Diagnosis:     "F41.1",
		RestDays:      "14",
		StartDate:     "cinco de marzo del presente año",
		EndDate:       "diecinueve de marzo",
		Issuer:        "COMPIN Metropolitano",
	},
}

func main() {
	outDir := flag.String("out", "./testdata", "output directory for generated PDFs")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	for _, f := range fixtures {
		path := filepath.Join(*outDir, f.Filename)
		if err := render(f, path); err != nil {
			log.Fatalf("render %s: %v", f.Filename, err)
		}
		fmt.Println("wrote", path)
	}
}

func render(f fixture, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 12, tr("LICENCIA MÉDICA"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(f.Issuer), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Nombre del trabajador", f.ProfessorName},
		{"RUT", f.NationalID},
		{"Diagnóstico", f.Diagnosis},
		{"Días de reposo", f.RestDays},
		{"Fecha de inicio", f.StartDate},
		{"Fecha de término", f.EndDate},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 8, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, tr(row[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr("Documento generado para pruebas. No constituye una licencia médica real."), "", "L", false)

	return pdf.OutputFileAndClose(path)
}
