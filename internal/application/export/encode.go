package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Ventas-api/internal/domain"
)

// Formatos soportados.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Charsets del CSV.
const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1252 = "windows-1252"
)

// File archivo exportado listo para enviar.
type File struct {
	ContentType string
	Filename    string
	Body        []byte
	// Digest SHA-256 (hex) de la forma canónica C14N; solo XML.
	Digest string
}

// Encoder codifica tablas; CSVCharset se aplica solo al CSV.
type Encoder struct {
	CSVCharset string
}

// Encode codifica la tabla en el formato pedido. ErrInvalidInput si el formato no existe.
func (e Encoder) Encode(t *Table, format string) (*File, error) {
	format = strings.ToLower(format)
	var (
		buf bytes.Buffer
		f   = &File{Filename: t.Name + "." + format}
		err error
	)
	switch format {
	case FormatCSV:
		f.ContentType = "text/csv; charset=" + e.charset()
		err = e.writeCSV(&buf, t)
	case FormatJSON:
		f.ContentType = "application/json"
		err = writeJSON(&buf, t)
	case FormatXML:
		f.ContentType = "application/xml"
		f.Digest, err = writeXML(&buf, t)
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	f.Body = buf.Bytes()
	return f, nil
}

func (e Encoder) charset() string {
	if strings.EqualFold(e.CSVCharset, CharsetWindows1252) {
		return CharsetWindows1252
	}
	return CharsetUTF8
}

func (e Encoder) writeCSV(w io.Writer, t *Table) error {
	if e.charset() == CharsetWindows1252 {
		// caracteres fuera de la página de códigos se reemplazan en lugar de abortar
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
		defer tw.Close()
		w = tw
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: cabecera: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = cellText(row[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: fila: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeJSON arreglo de objetos respetando el orden de columnas. Los decimales se serializan
// como string ("10.00") para no perder precisión.
func writeJSON(w io.Writer, t *Table) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for r, row := range t.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i, col := range t.Columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(col)
			buf.Write(k)
			buf.WriteByte(':')
			var v []byte
			var err error
			switch c := row[i].(type) {
			case int, int64:
				v, err = json.Marshal(c)
			default:
				v, err = json.Marshal(cellText(c))
			}
			if err != nil {
				return fmt.Errorf("json: %w", err)
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	_, err := w.Write(buf.Bytes())
	return err
}

// writeXML documento <export resource="sales"><row><id>…</id>…</row></export> (UTF-8, sin
// declaración). Devuelve el digest de lo escrito, reproducible por el cliente con C14N.
func writeXML(w io.Writer, t *Table) (string, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement("export")
	root.CreateAttr("resource", t.Name)
	for _, row := range t.Rows {
		el := root.CreateElement("row")
		for i, col := range t.Columns {
			el.CreateElement(col).SetText(cellText(row[i]))
		}
	}
	doc.Indent(2)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("xml: %w", err)
	}
	digest, err := CanonicalDigest(raw)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(raw); err != nil {
		return "", fmt.Errorf("xml: %w", err)
	}
	return digest, nil
}

// CanonicalDigest SHA-256 hex de la forma canónica (C14N) del XML: no depende del orden
// de los atributos ni del tipo de comillas.
func CanonicalDigest(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xml: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
