package slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

// Заголовки, которые выставляет шлюз перед сервисом
const (
	HeaderSessionID      = "X-Session-Id"
	HeaderOrganizationID = "X-Organization-Id"
)

var (
	// ErrMissingDate не передан start_date или end_date
	ErrMissingDate = errors.New("start_date and end_date are required")
	// ErrInvalidDate дата не в формате YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date format")
	// ErrInvalidFlag булев параметр не распознан
	ErrInvalidFlag = errors.New("invalid boolean flag")
)

// Сообщения об ошибках разбора query параметров
const (
	msgMissingDate = "start_date и end_date обязательны"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidFlag = "некорректное значение флага, ожидается true или false"
)

// Query общие query параметры запросов доступности
type Query struct {
	StartDate       time.Time
	EndDate         time.Time
	Detailed        bool
	IncludeInactive bool
}

// ParseQuery разбирает start_date, end_date, detailed_overlap и include_inactive
func ParseQuery(r *http.Request) (*Query, error) {
	values := r.URL.Query()

	startStr := values.Get("start_date")
	endStr := values.Get("end_date")
	if startStr == "" || endStr == "" {
		return nil, ErrMissingDate
	}

	start, err := time.Parse(domain.DateFormat, startStr)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := time.Parse(domain.DateFormat, endStr)
	if err != nil {
		return nil, ErrInvalidDate
	}

	detailed, err := parseFlag(values.Get("detailed_overlap"))
	if err != nil {
		return nil, err
	}
	includeInactive, err := parseFlag(values.Get("include_inactive"))
	if err != nil {
		return nil, err
	}

	return &Query{
		StartDate:       start,
		EndDate:         end,
		Detailed:        detailed,
		IncludeInactive: includeInactive,
	}, nil
}

// QueryErrorMessage текст ответа 400 для ошибки ParseQuery
func QueryErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingDate):
		return msgMissingDate
	case errors.Is(err, ErrInvalidFlag):
		return msgInvalidFlag
	default:
		return msgInvalidDate
	}
}

func parseFlag(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, ErrInvalidFlag
	}
	return v, nil
}

// CallerFromRequest данные вызывающего из заголовков шлюза
// Некорректный id организации игнорируется
func CallerFromRequest(r *http.Request) freetime.CallerContext {
	caller := freetime.CallerContext{
		SessionID: r.Header.Get(HeaderSessionID),
	}
	if v := r.Header.Get(HeaderOrganizationID); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			caller.OrganizationID = &id
		}
	}
	return caller
}
