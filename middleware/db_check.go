package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"minitweet/config"
	"minitweet/utils"
)

// DatabaseCheck verifies database readiness on the first request and caches
// the result for the process lifetime. When the schema has never been
// applied it runs migrations once as remediation. A database outage after
// the first successful check is not detected here; the /health endpoint does
// a live ping instead.
func DatabaseCheck(db *gorm.DB, migrate ...interface{}) gin.HandlerFunc {
	var once sync.Once
	var healthy bool

	return func(ctx *gin.Context) {
		once.Do(func() {
			healthy = checkDatabase(db, migrate...)
		})

		if !healthy {
			ctx.String(http.StatusServiceUnavailable, "Database is not available. Please check your database connection.")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func checkDatabase(db *gorm.DB, migrate ...interface{}) bool {
	sqlDB, err := db.DB()
	if err != nil {
		utils.Sugar.Errorf("database readiness check failed: %v", err)
		return false
	}
	if err := sqlDB.Ping(); err != nil {
		utils.Sugar.Errorf("database readiness ping failed: %v", err)
		return false
	}

	// Missing tables mean the schema was never applied; migrate once.
	for _, model := range migrate {
		if !db.Migrator().HasTable(model) {
			utils.Sugar.Warnf("schema table for %T not found, running migrations", model)
			if err := config.Migrate(db, migrate...); err != nil {
				utils.Sugar.Errorf("remediation migration failed: %v", err)
				return false
			}
			break
		}
	}

	utils.Sugar.Info("database readiness check passed")
	return true
}
