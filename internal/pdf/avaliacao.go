package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
	"github.com/skip2/go-qrcode"
)

// AvaliacaoDoc são os dados necessários para gerar o PDF de uma avaliação.
type AvaliacaoDoc struct {
	Avaliacao   *repo.Avaliacao
	ClienteNome string
	// URL da avaliação no app, embutida como QR code. Vazio omite o QR.
	LinkAvaliacao string
	GeradoEm      string
}

func secao(pdf *fpdf.Fpdf, titulo string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, titulo, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func campo(pdf *fpdf.Fpdf, rotulo, valor string) {
	valor = strings.TrimSpace(valor)
	if valor == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 5, rotulo, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, valor, "", "", false)
	pdf.Ln(1)
}

func simNao(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

// BuildAvaliacaoPDF gera o PDF da avaliação fisioterapêutica: identificação,
// anamnese, exame físico, plano e evolução, com QR para o registro no app.
func BuildAvaliacaoPDF(doc AvaliacaoDoc) ([]byte, error) {
	a := doc.Avaliacao
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, tr("Avaliação Fisioterapêutica"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Cliente: "+doc.ClienteNome), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Data da avaliação: "+a.DataAvaliacao.Format("02/01/2006")), "", 1, "L", false, 0, "")

	secao(pdf, tr("Diagnóstico"))
	campo(pdf, tr("Diagnóstico clínico"), tr(a.DiagnosticoClinico))
	campo(pdf, tr("Diagnóstico fisioterapêutico"), tr(a.DiagnosticoFisioterapeutico))

	secao(pdf, tr("Anamnese"))
	campo(pdf, tr("Queixa principal"), tr(a.QueixaPrincipal))
	campo(pdf, tr("História clínica"), tr(a.HistoriaClinica))
	campo(pdf, "HMA", tr(a.HMA))
	campo(pdf, "HMP", tr(a.HMP))
	campo(pdf, tr("Hábitos de vida"), tr(a.HabitosVida))
	campo(pdf, tr("Antecedentes pessoais"), tr(a.AntecedentesPessoais))
	campo(pdf, tr("Antecedentes familiares"), tr(a.AntecedentesFamiliares))
	campo(pdf, tr("Tratamentos realizados"), tr(a.TratamentosRealizados))
	campo(pdf, tr("Exames complementares"), tr(simNao(a.ExamesComplementares.Possui)+". "+a.ExamesComplementares.Descricao))
	campo(pdf, tr("Uso de medicamentos"), tr(simNao(a.UsoMedicamentos.Usa)+". "+a.UsoMedicamentos.Descricao))
	campo(pdf, tr("Cirurgias realizadas"), tr(simNao(a.CirurgiasRealizadas.Realizou)+". "+a.CirurgiasRealizadas.Descricao))

	secao(pdf, tr("Exame físico"))
	var apresenta []string
	ap := a.ApresentacaoPaciente
	if ap.Deambulando {
		apresenta = append(apresenta, "deambulando")
	}
	if ap.DeambulandoComApoio {
		apresenta = append(apresenta, "deambulando com apoio")
	}
	if ap.CadeiraDeRodas {
		apresenta = append(apresenta, "cadeira de rodas")
	}
	if ap.Internado {
		apresenta = append(apresenta, "internado")
	}
	if ap.Orientado {
		apresenta = append(apresenta, "orientado")
	}
	campo(pdf, tr("Apresentação do paciente"), tr(strings.Join(apresenta, ", ")))
	var inspecao []string
	ip := a.InspecaoPalpacao
	if ip.Normal {
		inspecao = append(inspecao, "normal")
	}
	if ip.Edema {
		inspecao = append(inspecao, "edema")
	}
	if ip.CicatrizacaoIncompleta {
		inspecao = append(inspecao, "cicatrização incompleta")
	}
	if ip.Eritemas {
		inspecao = append(inspecao, "eritemas")
	}
	if ip.Outros && ip.OutrosDescricao != "" {
		inspecao = append(inspecao, ip.OutrosDescricao)
	}
	campo(pdf, tr("Inspeção/palpação"), tr(strings.Join(inspecao, ", ")))
	campo(pdf, "Semiologia", tr(a.Semiologia))
	campo(pdf, tr("Testes específicos"), tr(a.TestesEspecificos))
	campo(pdf, tr("Dor (EVA)"), fmt.Sprintf("%d/10", a.AvaliacaoDorEVA))

	secao(pdf, tr("Plano de tratamento"))
	campo(pdf, tr("Objetivos"), tr(a.ObjetivosTratamento))
	campo(pdf, tr("Recursos terapêuticos"), tr(a.RecursosTerapeuticos))
	campo(pdf, tr("Plano"), tr(a.PlanoTratamento))

	if strings.TrimSpace(a.Evolucao) != "" {
		secao(pdf, tr("Evolução"))
		pdf.MultiCell(0, 5, tr(a.Evolucao), "", "", false)
	}

	pdf.Ln(6)
	if doc.LinkAvaliacao != "" {
		qrPNG, err := qrcode.Encode(doc.LinkAvaliacao, qrcode.Medium, 128)
		if err == nil {
			tmpFile, err := os.CreateTemp("", "qr-*.png")
			if err == nil {
				tmpFile.Write(qrPNG)
				path := tmpFile.Name()
				tmpFile.Close()
				defer os.Remove(path)
				pdf.RegisterImage(path, "PNG")
				pdf.Image(path, 15, pdf.GetY(), 25, 25, false, "", 0, "")
				pdf.SetY(pdf.GetY() + 27)
			}
		}
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, tr("Registro completo: "+doc.LinkAvaliacao), "", 1, "L", false, 0, "")
	}
	if doc.GeradoEm != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, tr("Gerado em "+doc.GeradoEm), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAvaliacaoPDFTo escreve o PDF no writer (resposta HTTP ou arquivo).
func WriteAvaliacaoPDFTo(doc AvaliacaoDoc, w io.Writer) error {
	b, err := BuildAvaliacaoPDF(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
