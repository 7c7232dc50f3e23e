package catalog

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// sufixoRe sufijo de variante al final del código interno, ej. "1001.01.03X05L" -> "1001.01".
var sufixoRe = regexp.MustCompile(`\.\w+$`)

type chaveBusca struct {
	ean13   string
	dun14   string
	codprod string
}

// Resolver resuelve la identidad de un producto a partir de EAN13, DUN14 o
// código interno. El catálogo se carga e indexa una sola vez en la
// construcción y es de solo lectura; los resultados (aciertos y fallos) se
// memoizan por tripla de búsqueda. Seguro para uso concurrente.
type Resolver struct {
	porEAN        map[string]*entity.Produto
	porDUN        map[string]*entity.Produto
	porCodigo     map[string]*entity.Produto
	porCodigoBase map[string]*entity.Produto
	produtos      []*entity.Produto

	mu    sync.RWMutex
	cache map[chaveBusca]*entity.Produto
}

type arquivoCatalogo struct {
	Produtos []*entity.Produto `json:"produtos"`
}

// NovoResolver carga el catálogo desde un archivo JSON. Un fallo de lectura o
// parseo no impide la construcción: el resolver degrada a un índice vacío
// (toda búsqueda devuelve "no encontrado") y el diagnóstico queda registrado.
func NovoResolver(path string, log *logger.Logger) *Resolver {
	r := &Resolver{
		porEAN:        make(map[string]*entity.Produto),
		porDUN:        make(map[string]*entity.Produto),
		porCodigo:     make(map[string]*entity.Produto),
		porCodigoBase: make(map[string]*entity.Produto),
		cache:         make(map[chaveBusca]*entity.Produto),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("no se pudo leer el catálogo de productos; índice vacío")
		return r
	}
	var arq arquivoCatalogo
	if err := json.Unmarshal(data, &arq); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("catálogo de productos inválido; índice vacío")
		return r
	}

	for _, p := range arq.Produtos {
		if p == nil || p.Codigo == "" {
			continue
		}
		r.produtos = append(r.produtos, p)
		if p.EAN13 != "" {
			r.porEAN[p.EAN13] = p
		}
		if p.DUN14 != "" {
			r.porDUN[p.DUN14] = p
		}
		r.porCodigo[p.Codigo] = p
		r.porCodigoBase[RemoverSufixo(p.Codigo)] = p
	}
	log.Info().Int("produtos", len(r.produtos)).Str("path", path).Msg("catálogo de productos cargado")
	return r
}

// BuscarProduto resuelve un producto con estrategias ordenadas, primera
// coincidencia gana:
//  1. EAN13 exacto
//  2. DUN14 exacto
//  3. código interno exacto
//  4. código base (sin sufijo), solo si quitar el sufijo cambia el string
//
// Devuelve nil cuando las cuatro fallan; decidir si eso es fatal es del caller.
func (r *Resolver) BuscarProduto(ean13, dun14, codprod string) *entity.Produto {
	ean13 = strings.TrimSpace(ean13)
	dun14 = strings.TrimSpace(dun14)
	codprod = strings.TrimSpace(codprod)

	chave := chaveBusca{ean13: ean13, dun14: dun14, codprod: codprod}
	r.mu.RLock()
	if p, ok := r.cache[chave]; ok {
		r.mu.RUnlock()
		return p
	}
	r.mu.RUnlock()

	p := r.buscar(ean13, dun14, codprod)

	r.mu.Lock()
	r.cache[chave] = p
	r.mu.Unlock()
	return p
}

func (r *Resolver) buscar(ean13, dun14, codprod string) *entity.Produto {
	if ean13 != "" {
		if p, ok := r.porEAN[ean13]; ok {
			return p
		}
	}
	if dun14 != "" {
		if p, ok := r.porDUN[dun14]; ok {
			return p
		}
	}
	if codprod != "" {
		if p, ok := r.porCodigo[codprod]; ok {
			return p
		}
		if base := RemoverSufixo(codprod); base != codprod {
			if p, ok := r.porCodigoBase[base]; ok {
				return p
			}
		}
	}
	return nil
}

// Todos devuelve todos los productos del catálogo.
func (r *Resolver) Todos() []*entity.Produto {
	return r.produtos
}

// BuscarPorDescricao busca productos cuyo nombre contenga el término,
// ignorando mayúsculas y acentos.
func (r *Resolver) BuscarPorDescricao(termo string) []*entity.Produto {
	termo = normalizar(termo)
	if termo == "" {
		return nil
	}
	var out []*entity.Produto
	for _, p := range r.produtos {
		if strings.Contains(normalizar(p.Descricao), termo) {
			out = append(out, p)
		}
	}
	return out
}

// RemoverSufixo recorta el último token ".xxx" del código interno.
func RemoverSufixo(codigo string) string {
	return sufixoRe.ReplaceAllString(codigo, "")
}

var dobrarAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizar(s string) string {
	limpio, _, err := transform.String(dobrarAcentos, s)
	if err != nil {
		limpio = s
	}
	return strings.ToUpper(strings.TrimSpace(limpio))
}
