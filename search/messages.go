package search

import (
	"errors"
	"fmt"

	"weather-lookup/datasource"
	"weather-lookup/geolocation"
)

var (
	// ErrQueryTooShort rejects a search whose trimmed query has fewer than two characters
	ErrQueryTooShort = errors.New("query is too short")
	// ErrBusy rejects a new attempt while another one is outstanding
	ErrBusy = errors.New("a search is already in progress")
	// ErrUnexpected classifies failures that have no dedicated message
	ErrUnexpected = errors.New("unexpected failure")
)

// User-facing messages shown in the result area
const (
	MsgNotFound            = "Cidade não encontrada. Tenta outro nome"
	MsgHTTPStatus          = "HTTP %d ao acessar API"
	MsgNetwork             = "Falha de rede ao acessar API. Verifique sua conexão."
	MsgMalformed           = "Resposta inválida da API."
	MsgUnsupported         = "Seu dispositivo não suporta geolocalização."
	MsgPermissionDenied    = "Permissão negada para acessar localização."
	MsgPositionUnavailable = "Localização indisponível no momento."
	MsgLocationTimeout     = "Tempo esgotado ao obter localização."
	MsgLocationFailed      = "Erro ao obter localização."
	MsgUnexpected          = "Erro inesperado."
	MsgUnexpectedLocation  = "Erro inesperado ao usar localização."
)

// UserMessage renders err for display, using fallback for unrecognised failures
func UserMessage(err error, fallback string) string {
	var te *datasource.TransportError
	var geoErr *geolocation.Error

	switch {
	case err == nil:
		return ""
	case errors.Is(err, datasource.ErrNotFound):
		return MsgNotFound
	case errors.As(err, &te):
		switch {
		case te.StatusCode != 0:
			return fmt.Sprintf(MsgHTTPStatus, te.StatusCode)
		case errors.Is(te, datasource.ErrMalformedResponse):
			return MsgMalformed
		default:
			return MsgNetwork
		}
	case errors.Is(err, geolocation.ErrUnsupported):
		return MsgUnsupported
	case errors.Is(err, geolocation.ErrPermissionDenied):
		return MsgPermissionDenied
	case errors.Is(err, geolocation.ErrPositionUnavailable):
		return MsgPositionUnavailable
	case errors.Is(err, geolocation.ErrTimeout):
		return MsgLocationTimeout
	case errors.As(err, &geoErr):
		return MsgLocationFailed
	default:
		return fallback
	}
}
