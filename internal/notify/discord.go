package notify

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"
)

type DiscordSink struct {
	webhookUrl string
}

func NewDiscordSink(webhookUrl string) *DiscordSink {
	return &DiscordSink{webhookUrl: webhookUrl}
}

func (s *DiscordSink) Name() string {
	return "discord"
}

func (s *DiscordSink) Send(ctx context.Context, alert Alert) error {
	client, err := webhook.NewWithURL(s.webhookUrl)
	if err != nil {
		return fmt.Errorf("discord: create webhook client: %w", err)
	}
	defer client.Close(ctx)

	color := 0x00ff00
	if alert.NetProfit < 0 {
		color = 0xff0000
	}

	_, err = client.CreateEmbeds([]discord.Embed{
		discord.NewEmbedBuilder().
			SetTitle("Arbitrage opportunity found").
			SetDescription(alert.Title()).
			SetColor(color).
			AddField("Coin", alert.Asset, true).
			AddField("Buy On", Capitalize(alert.BuyExchange), true).
			AddField("Sell On", Capitalize(alert.SellExchange), true).
			AddField("\u200B", "\u200B", false).
			AddField("Net Profit", FormatPrice(alert.NetProfit), true).
			AddField("ROI", fmt.Sprintf("%.3f%%", alert.ROI), true).
			AddField("Confidence", fmt.Sprintf("%.0f%%", alert.Confidence), true).
			Build()}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}
