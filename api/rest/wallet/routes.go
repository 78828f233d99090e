package wallet

import (
	"codeberg.org/gamevault/server/gamevault/wallets"
	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

// registers all wallet routes
func RegisterRoutes(router *gin.RouterGroup, walletRepo wallets.Store, tokens *auth.Manager, notifier *notifications.Service, alertThreshold int64) {
	walletGroup := router.Group("/wallet", tokens.Middleware())
	{
		walletGroup.GET("", GetWalletHandler(walletRepo))
		walletGroup.GET("/transactions", ListTransactionsHandler(walletRepo))
		walletGroup.GET("/transactions/:id", GetTransactionHandler(walletRepo))
		walletGroup.POST("/deposits", DepositHandler(walletRepo))
		walletGroup.POST("/withdrawals", WithdrawHandler(walletRepo, notifier, alertThreshold))
	}
}
