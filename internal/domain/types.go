package domain

type (
	Email     = string
	Handle    = string
	Password  = string
	AccountId = int64
)
