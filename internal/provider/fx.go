package provider

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/clock"
	"github.com/I7ZT1/club-manager-panel/internal/config"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/onepayment"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/paybridge"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/paychain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/platipay"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/payport"
	"github.com/I7ZT1/club-manager-panel/internal/provider/clients/profiat"
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

// NewPayportClient is provided separately: the withdraw service needs the
// concrete client, not the deposit capability.
func NewPayportClient(cfg config.Config, log *zap.Logger) *payport.Client {
	return payport.New(domain.PayportUA, payport.Config{
		APIv3Key:    cfg.Payport.APIv3Key,
		APIv5Key:    cfg.Payport.APIv5Key,
		APIURL:      cfg.Payport.APIURL,
		CallbackURL: cfg.Payport.CallbackURL,
	}, log)
}

// NewDefaultRegistry assembles the production fallback chains. Order inside
// a chain is the fallback priority.
func NewDefaultRegistry(cfg config.Config, payportClient *payport.Client, clk clock.Clock, log *zap.Logger) *Registry {
	reg := NewRegistry()

	reg.Register(domain.UAH,
		paybridge.New(domain.PayBridge, paybridge.Config{
			APIURL:     cfg.PayBridge.APIURL,
			MerchantID: cfg.PayBridge.MerchantID,
			APISecret:  cfg.PayBridge.APISecret,
		}, log),
		payportClient,
		paychain.New(domain.PayChain, paychain.Config{
			APIKey: cfg.PayChain.APIKey,
			APIURL: cfg.PayChain.APIURL,
		}, log),
		platipay.New(domain.PlatiPay, platipay.Config{
			APIKey:      cfg.PlatiPay.APIKey,
			SecretKey:   cfg.PlatiPay.SecretKey,
			APIURL:      cfg.PlatiPay.APIURL,
			CallbackURL: cfg.PlatiPay.CallbackURL,
		}, log),
		profiat.New(domain.Profiat, cfg.Profiat, clk, log),
	)

	reg.Register(domain.KZT,
		onepayment.New(domain.OnePaymentKZT, onepayment.Config{
			APIKey:  cfg.OnePayment.APIKey,
			APIURL:  cfg.OnePayment.APIURL,
			HookURL: cfg.OnePayment.HookURL,
		}, log),
	)

	return reg
}

var Module = fx.Module("provider",
	fx.Provide(NewPayportClient),
	fx.Provide(NewDefaultRegistry),
)
