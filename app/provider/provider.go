package provider

import "github.com/vibast-solutions/ms-go-campaigns/app/campaign"

var (
	_ campaign.Transport = (*SMTPTransport)(nil)
	_ campaign.Transport = (*SESTransport)(nil)
	_ campaign.Transport = (*NoopTransport)(nil)
)
