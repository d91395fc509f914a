package notify

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
)

// writePart writes body as a quoted printable part of contentType
func writePart(w *multipart.Writer, contentType, body string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType+"; charset=utf-8")
	header.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err = qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

// Bytes encodes the message as multipart/alternative MIME with the
// plain text part first
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if m.From != "" {
		fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	}
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())
	if err := writePart(w, "text/plain", m.Text); err != nil {
		return nil, err
	}
	if err := writePart(w, "text/html", m.HTML); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
