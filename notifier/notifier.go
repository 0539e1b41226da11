package notifier

import (
	"database/sql"
	"emission-monitoring/config"
	"emission-monitoring/models"
	"emission-monitoring/utils"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"
)

//ErrTemplate marks a missing or unreadable HTML template. It fails the
//notification it belongs to, nothing else.
var ErrTemplate = errors.New("html template not available")

type Notifier interface {
	SendExceedance(email models.EmailDetails, stack, reportTable string) error
	SendStaleTransmission(email models.EmailDetails, lastRegional sql.NullTime) error
}

var NewNotifier = func(templateLocation, logoLocation string) Notifier {
	return &Impl{
		TemplateLocation: templateLocation,
		LogoLocation:     logoLocation,
	}
}

type Impl struct {
	TemplateLocation string
	LogoLocation     string
}

//SendExceedance renders the exceedance report template and mails it with the
//report table inlined
func (i *Impl) SendExceedance(email models.EmailDetails, stack, reportTable string) error {

	html, err := i.renderExceedance(email, stack, reportTable)
	if err != nil {
		log.Error(err)
		return err
	}
	return i.send(email, html)
}

//SendStaleTransmission renders the stale transmission template and mails it.
//The payload is the last successful transmission time only, no data table.
func (i *Impl) SendStaleTransmission(email models.EmailDetails, lastRegional sql.NullTime) error {

	html, err := i.renderStaleTransmission(lastRegional)
	if err != nil {
		log.Error(err)
		return err
	}
	return i.send(email, html)
}

func (i *Impl) renderExceedance(email models.EmailDetails, stack, reportTable string) (string, error) {

	html, err := loadHTMLTemplate(filepath.Join(i.TemplateLocation, config.GetExceedanceTemplateName()))
	if err != nil {
		return "", err
	}

	html = strings.ReplaceAll(html, "{{logo}}", "cid:"+filepath.Base(i.LogoLocation))
	html = strings.ReplaceAll(html, "{{stack}}", stack)
	html = strings.ReplaceAll(html, "{{body}}", email.Body)
	html = strings.ReplaceAll(html, "{{data}}", reportTable)
	return html, nil
}

func (i *Impl) renderStaleTransmission(lastRegional sql.NullTime) (string, error) {

	html, err := loadHTMLTemplate(filepath.Join(i.TemplateLocation, config.GetStaleTemplateName()))
	if err != nil {
		return "", err
	}

	html = strings.ReplaceAll(html, "{{logo}}", "cid:"+filepath.Base(i.LogoLocation))
	html = strings.ReplaceAll(html, "{{hours}}", utils.FormatStaleTimestamp(lastRegional))
	return html, nil
}

func (i *Impl) send(email models.EmailDetails, html string) error {

	message := gomail.NewMessage()
	message.SetHeader("From", email.Address)
	message.SetHeader("To", utils.SplitRecipients(email.To)...)
	if cc := utils.SplitRecipients(email.Cc); len(cc) > 0 {
		message.SetHeader("Cc", cc...)
	}
	if bcc := utils.SplitRecipients(email.Bcc); len(bcc) > 0 {
		message.SetHeader("Bcc", bcc...)
	}
	message.SetHeader("Subject", email.Subject)
	message.SetBody("text/html", html)
	message.Embed(i.LogoLocation)

	dialer := gomail.NewDialer(email.SMTPHost, email.Port, email.Address, email.Password)
	err := dialer.DialAndSend(message)
	if err != nil {
		log.Error(err)
		return err
	}
	return nil
}

//BuildTable renders the exceedance events as report table rows. Values carry
//two decimals and the configured unit string.
func BuildTable(events []models.ExceedanceEvent, pollutant, unit string, standard float64) string {

	var builder strings.Builder
	for _, event := range events {
		builder.WriteString(`
            <tr>
                <td style='border:1px solid black; border-collapse:collapse; padding: 15px;'>` + pollutant + `</td>
                <td style='border:1px solid black; border-collapse:collapse; padding: 15px;'>` + event.Timestamp.Format(config.GetSQLDateLayout()) + `</td>
                <td style='border:1px solid black; border-collapse:collapse; padding: 15px;'>` + utils.FormatValue(event.Value) + " " + unit + `</td>
                <td style='border:1px solid black; border-collapse:collapse; padding: 15px;'>` + utils.FormatStandard(standard) + `</td>
            </tr>
`)
	}
	return builder.String()
}

func loadHTMLTemplate(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return string(content), nil
}
