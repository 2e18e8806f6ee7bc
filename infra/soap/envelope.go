package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

const (
	envNS = "http://www.w3.org/2003/05/soap-envelope"
	wsaNS = "http://www.w3.org/2005/08/addressing"
)

type envelope struct {
	XMLName xml.Name `xml:"http://www.w3.org/2003/05/soap-envelope Envelope"`
	Header  header   `xml:"http://www.w3.org/2003/05/soap-envelope Header"`
	Body    body     `xml:"http://www.w3.org/2003/05/soap-envelope Body"`
}

type header struct {
	Elements []headerElement `xml:",any"`
}

type headerElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// body encodes the request under the element name of the action.
type body struct {
	name    xml.Name
	payload any
}

func (b body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.EncodeElement(b.payload, xml.StartElement{Name: b.name}); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type message struct {
	version     ocpp.Version
	action      ocpp.Action
	chargeBoxID string
	messageID   string
	to          string
	payload     any
}

func encodeRequest(m message) ([]byte, error) {
	ns := m.version.Namespace()
	env := envelope{
		Header: header{Elements: []headerElement{
			{XMLName: xml.Name{Space: ns, Local: "chargeBoxIdentity"}, Value: m.chargeBoxID},
			{XMLName: xml.Name{Space: wsaNS, Local: "Action"}, Value: m.action.SOAPAction()},
			{XMLName: xml.Name{Space: wsaNS, Local: "MessageID"}, Value: m.messageID},
			{XMLName: xml.Name{Space: wsaNS, Local: "To"}, Value: m.to},
		}},
		Body: body{
			name:    xml.Name{Space: ns, Local: m.action.RequestElement()},
			payload: m.payload,
		},
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", m.action, err)
	}
	return buf.Bytes(), nil
}

type faultXML struct {
	Code struct {
		Value   string `xml:"Value"`
		Subcode struct {
			Value string `xml:"Value"`
		} `xml:"Subcode"`
	} `xml:"Code"`
	Reason struct {
		Text string `xml:"Text"`
	} `xml:"Reason"`
	Detail struct {
		Inner string `xml:",innerxml"`
	} `xml:"Detail"`
}

func (f faultXML) fault() *ocpp.Fault {
	code := f.Code.Subcode.Value
	if code == "" {
		code = f.Code.Value
	}
	if i := strings.IndexByte(code, ':'); i >= 0 {
		code = code[i+1:]
	}
	return &ocpp.Fault{
		Code:   code,
		Reason: strings.TrimSpace(f.Reason.Text),
		Detail: strings.TrimSpace(f.Detail.Inner),
	}
}

var errNoBody = errors.New("soap: envelope has no body content")

// decodeResponse reads a response envelope. A SOAP fault is returned as an
// *ocpp.Fault; otherwise the body element must be the response element of
// action and is decoded into resp.
func decodeResponse(r io.Reader, action ocpp.Action, resp any) error {
	var env struct {
		Body struct {
			Fault *faultXML `xml:"Fault"`
			Inner []byte    `xml:",innerxml"`
		} `xml:"Body"`
	}
	if err := xml.NewDecoder(r).Decode(&env); err != nil {
		return fmt.Errorf("decode %s envelope: %w", action, err)
	}
	if env.Body.Fault != nil {
		return env.Body.Fault.fault()
	}

	d := xml.NewDecoder(bytes.NewReader(env.Body.Inner))
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return errNoBody
		}
		if err != nil {
			return fmt.Errorf("decode %s body: %w", action, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != action.ResponseElement() {
			return fmt.Errorf("soap: expected %s, got %s", action.ResponseElement(), se.Name.Local)
		}
		if resp == nil {
			return nil
		}
		if err := d.DecodeElement(resp, &se); err != nil {
			return fmt.Errorf("decode %s: %w", action.ResponseElement(), err)
		}
		return nil
	}
}
