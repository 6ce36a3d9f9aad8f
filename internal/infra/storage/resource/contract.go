package resource

import (
	"github.com/m04kA/SMC-FreetimeService/pkg/dbmetrics"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
