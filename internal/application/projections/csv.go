package projections

import (
	"bufio"
	"io"
	"strings"

	"carevia/internal/domain/contact"
)

// ContactsCSVHeader is the first line of the contacts export.
const ContactsCSVHeader = "Name,Email,Phone,Subject,Message"

// WriteContactsCSV writes contact submissions as CSV. Every data field is
// double-quoted with embedded quotes doubled; rows end in CRLF.
func WriteContactsCSV(w io.Writer, msgs []contact.Message) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(ContactsCSVHeader + "\r\n")
	for _, m := range msgs {
		fields := []string{m.Name, m.Email, m.Phone, m.Subject, m.Message}
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quoteCSV(f))
		}
		bw.WriteString("\r\n")
	}
	return bw.Flush()
}

// ContactsCSV returns the export as a string.
func ContactsCSV(msgs []contact.Message) string {
	var b strings.Builder
	_ = WriteContactsCSV(&b, msgs)
	return b.String()
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
