package psqlbuilder

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// builder squirrel с плейсхолдерами PostgreSQL ($1, $2, ...)
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select создает SELECT запрос с плейсхолдерами PostgreSQL
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// UnionAll склеивает несколько SELECT через UNION ALL
// Части собираются с плейсхолдерами '?', нумерация $n проставляется один раз в конце,
// иначе каждая часть начинала бы счёт с $1
func UnionAll(parts ...squirrel.SelectBuilder) (string, []interface{}, error) {
	queries := make([]string, 0, len(parts))
	args := make([]interface{}, 0)

	for _, part := range parts {
		query, partArgs, err := part.PlaceholderFormat(squirrel.Question).ToSql()
		if err != nil {
			return "", nil, err
		}
		queries = append(queries, query)
		args = append(args, partArgs...)
	}

	query, err := squirrel.Dollar.ReplacePlaceholders(strings.Join(queries, " UNION ALL "))
	if err != nil {
		return "", nil, err
	}

	return query, args, nil
}
