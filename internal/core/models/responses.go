package models

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type QueueListResponse struct {
	Queues []Queue `json:"queues"`
}

type TopicListResponse struct {
	Topics []Topic `json:"topics"`
}

type SubscriptionListResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

type RuleListResponse struct {
	Rules []Rule `json:"rules"`
}

type MessageListResponse struct {
	Messages []Message `json:"messages"`
}

type PurgeResponse struct {
	Purged int `json:"purged"`
}
