package scenarios

import (
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

const envelope = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope" xmlns:cp="urn://Ocpp/Cp/2012/06/">
  <soap:Body>%s</soap:Body>
</soap:Envelope>`

const faultBody = `<soap:Fault>
      <soap:Code><soap:Value>soap:Sender</soap:Value><soap:Subcode><soap:Value>cp:SecurityError</soap:Value></soap:Subcode></soap:Code>
      <soap:Reason><soap:Text xml:lang="en">scripted fault</soap:Text></soap:Reason>
    </soap:Fault>`

// scriptedChargePoint answers SOAP requests according to its definition.
type scriptedChargePoint struct {
	def ChargePointDef
	srv *httptest.Server

	mu       sync.Mutex
	answered int
}

func newScriptedChargePoint(def ChargePointDef) *scriptedChargePoint {
	cp := &scriptedChargePoint{def: def}
	cp.srv = httptest.NewServer(http.HandlerFunc(cp.serve))
	return cp
}

func (cp *scriptedChargePoint) URL() string { return cp.srv.URL }

func (cp *scriptedChargePoint) Close() {
	cp.srv.CloseClientConnections()
	cp.srv.Close()
}

func (cp *scriptedChargePoint) reply() Reply {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	r := cp.def.Reply
	if cp.def.AfterReply != "" && cp.answered >= cp.def.After {
		r = cp.def.AfterReply
	}
	cp.answered++
	if r == "" {
		r = ReplyAccept
	}
	return r
}

func (cp *scriptedChargePoint) serve(w http.ResponseWriter, r *http.Request) {
	action, err := soapAction(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body string
	switch cp.reply() {
	case ReplyDrop:
		<-r.Context().Done()
		return
	case ReplyFault:
		w.Header().Set("Content-Type", "application/soap+xml; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprintf(w, envelope, faultBody)
		return
	case ReplyReject:
		body = responseBody(action, "Rejected")
	default:
		body = responseBody(action, "Accepted")
	}
	w.Header().Set("Content-Type", "application/soap+xml; charset=utf-8")
	_, _ = fmt.Fprintf(w, envelope, body)
}

// soapAction extracts the operation name from the SOAP 1.2 action parameter.
func soapAction(contentType string) (string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", err
	}
	a := strings.TrimPrefix(params["action"], "/")
	if a == "" {
		return "", fmt.Errorf("missing soap action")
	}
	return a, nil
}

func responseBody(action, status string) string {
	el := strings.ToLower(action[:1]) + action[1:] + "Response"
	switch action {
	case "GetDiagnostics":
		return fmt.Sprintf("<cp:%s><cp:fileName>diag.zip</cp:fileName></cp:%s>", el, el)
	case "GetLocalListVersion":
		return fmt.Sprintf("<cp:%s><cp:listVersion>1</cp:listVersion></cp:%s>", el, el)
	case "GetConfiguration":
		return fmt.Sprintf("<cp:%s><cp:configurationKey><cp:key>HeartBeatInterval</cp:key><cp:readonly>false</cp:readonly><cp:value>60</cp:value></cp:configurationKey></cp:%s>", el, el)
	case "SendLocalList":
		if status == "Accepted" {
			return fmt.Sprintf("<cp:%s><cp:status>Accepted</cp:status><cp:hash>scripted</cp:hash></cp:%s>", el, el)
		}
		return fmt.Sprintf("<cp:%s><cp:status>Failed</cp:status></cp:%s>", el, el)
	}
	return fmt.Sprintf("<cp:%s><cp:status>%s</cp:status></cp:%s>", el, status, el)
}
