package neogrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sobeldigital/importador-neogrid/internal/domain"
	"github.com/sobeldigital/importador-neogrid/internal/domain/edi"
	"github.com/sobeldigital/importador-neogrid/pkg/config"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// Client cliente HTTP de la API de documentos EDI de Neogrid. Autenticación
// básica, timeouts acotados y reintentos con backoff exponencial solo para
// fallas transitorias (429/5xx); los errores de autenticación/autorización
// son permanentes.
type Client struct {
	url        string
	statusURL  string
	username   string
	password   string
	docType    string
	docsQty    string
	maxRetries uint64
	http       *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente con la configuración de la app.
func NewClient(cfg config.NeogridConfig, log *logger.Logger) *Client {
	statusURL := cfg.StatusURL
	if statusURL == "" {
		statusURL = cfg.URL + "/status"
	}
	timeout := time.Duration(cfg.TimeoutSegundos) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxTentativas
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		url:        cfg.URL,
		statusURL:  statusURL,
		username:   cfg.Username,
		password:   cfg.Password,
		docType:    cfg.DocType,
		docsQty:    cfg.DocsQty,
		maxRetries: uint64(maxRetries),
		http:       &http.Client{Timeout: timeout},
		log:        log,
	}
}

type consultaPedidos struct {
	DocType string `json:"docType"`
	DocsQty string `json:"docsQty"`
}

type respostaPedidos struct {
	Documents []edi.Documento `json:"documents"`
}

// BuscarPedidos consulta los pedidos pendientes en Neogrid. Reintenta con
// backoff exponencial hasta maxRetries veces sobre 429/5xx; cualquier otro
// status es permanente y sale como APIError clasificado.
func (c *Client) BuscarPedidos(ctx context.Context) ([]edi.Documento, error) {
	var docs []edi.Documento
	op := func() error {
		body, err := c.post(ctx, c.url, consultaPedidos{DocType: c.docType, DocsQty: c.docsQty}, "buscar pedidos")
		if err != nil {
			return err
		}
		var resp respostaPedidos
		if err := json.Unmarshal(body, &resp); err != nil {
			return backoff.Permanent(&domain.APIError{
				Operacao: "buscar pedidos",
				Err:      fmt.Errorf("respuesta inválida: %w", err),
			})
		}
		docs = resp.Documents
		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// AtualizarStatus informa a Neogrid el estado terminal de cada documento.
// Best-effort: el caller registra el fallo pero no aborta el lote; por eso
// acá no hay reintentos.
func (c *Client) AtualizarStatus(ctx context.Context, statuses []edi.StatusDocumento) error {
	if len(statuses) == 0 {
		return nil
	}
	_, err := c.post(ctx, c.statusURL, statuses, "actualizar status")
	return err
}

// post ejecuta un POST JSON autenticado y clasifica el status de respuesta.
// Los transitorios (429/5xx) vuelven como errores comunes para que backoff
// los reintente; el resto vuelve envuelto en backoff.Permanent.
func (c *Client) post(ctx context.Context, url string, payload any, operacao string) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, backoff.Permanent(&domain.APIError{Operacao: operacao, Err: err})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, backoff.Permanent(&domain.APIError{Operacao: operacao, Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	res, err := c.http.Do(req)
	if err != nil {
		// Fallo de red: puede ser transitorio, dejarlo reintentar.
		return nil, &domain.APIError{Operacao: operacao, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &domain.APIError{Operacao: operacao, StatusCode: res.StatusCode, Err: err}
	}

	if res.StatusCode == http.StatusOK {
		return body, nil
	}

	apiErr := &domain.APIError{
		Operacao:   operacao,
		StatusCode: res.StatusCode,
		Err:        fmt.Errorf("HTTP %d: %s", res.StatusCode, resumirCuerpo(body)),
	}
	if apiErr.Transitorio() {
		c.log.Warn().Int("status", res.StatusCode).Str("operacao", operacao).
			Msg("respuesta transitoria de Neogrid; se reintenta con backoff")
		return nil, apiErr
	}
	return nil, backoff.Permanent(apiErr)
}

// resumirCuerpo acota el cuerpo de error para no inundar los logs.
func resumirCuerpo(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
