package config

// BotConfig contains Discord bot configuration.
type BotConfig struct {
	// Token is the bot token used to authenticate with the Discord gateway.
	Token string `env:"BOT_TOKEN,required,notEmpty"`

	// VerifiedRoleName is the exact name of the role assigned to members
	// who complete verification. The role must already exist in the guild.
	VerifiedRoleName string `env:"VERIFIED_ROLE_NAME" envDefault:"Verified"`

	// OrgName is the organization display name shown on the success view.
	OrgName string `env:"ORG_NAME" envDefault:"your organization"`
}
