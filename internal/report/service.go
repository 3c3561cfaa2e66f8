package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/signintech/gopdf"

	"github.com/brightlight720720/ILD/internal/analysis"
	"github.com/brightlight720720/ILD/internal/meeting"
)

type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Service renders a finished analysis as a PDF and delivers it to the
// physician's chat.
type Service struct {
	tgClient        TelegramClient
	physicianChatID int64
}

func NewService(tg TelegramClient, physicianChatID int64) *Service {
	return &Service{
		tgClient:        tg,
		physicianChatID: physicianChatID,
	}
}

func (s *Service) SendPhysicianReport(ctx context.Context, rec analysis.Record) error {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	// Try multiple common paths for the DejaVu font.
	fontPaths := []string{
		"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return errors.Wrap(fontErr, "failed to load font for PDF; ensure ttf-dejavu is installed")
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return err
	}
	pdf.Cell(nil, "ILD Multidisciplinary Meeting Report")
	pdf.Br(30)

	result := rec.Result
	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", time.Now().Format("2006/01/02 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Patient: %s (%s)", result.PatientName, result.PatientID))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Risk level: %s", result.RiskLevel))
	pdf.Br(25)

	if err := s.writeSection(&pdf, "Risk factors:", ""); err != nil {
		return err
	}
	for _, factor := range result.RiskFactors {
		if err := s.writeLines(&pdf, "- "+factor); err != nil {
			return err
		}
	}
	pdf.Br(10)

	sections := []struct {
		title string
		body  string
	}{
		{"Diagnosis analysis:", result.DiagnosisSummary},
		{"Treatment recommendations:", result.TreatmentSummary},
		{"Progression assessment:", result.ProgressionSummary},
	}
	for _, section := range sections {
		if err := s.writeSection(&pdf, section.title, section.body); err != nil {
			return err
		}
		pdf.Br(10)
	}

	if err := s.writeSection(&pdf, "Discussion checklist:", ""); err != nil {
		return err
	}
	for _, q := range meeting.Questions() {
		line := fmt.Sprintf("- %s %s", q.Prompt, result.Checklist[q.ID])
		if err := s.writeLines(&pdf, line); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "failed to write PDF")
	}

	fileName := fmt.Sprintf("ild_report_%s.pdf", rec.PatientID)
	return s.tgClient.SendDocument(s.physicianChatID, buf.Bytes(), fileName)
}

func (s *Service) writeSection(pdf *gopdf.GoPdf, title, body string) error {
	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return err
	}
	pdf.Cell(nil, title)
	pdf.Br(15)
	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return err
	}
	if body == "" {
		return nil
	}
	return s.writeLines(pdf, body)
}

func (s *Service) writeLines(pdf *gopdf.GoPdf, text string) error {
	lines, _ := pdf.SplitText(text, 500)
	for _, l := range lines {
		pdf.Cell(nil, l)
		pdf.Br(12)
	}
	return nil
}
