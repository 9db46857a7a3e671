package options

// Option keys shared across entity types
const (
	KeyMaxSizeInMegabytes             = "MaxSizeInMegabytes"
	KeyDefaultMessageTimeToLive       = "DefaultMessageTimeToLive"
	KeyLockDuration                   = "LockDuration"
	KeyRequiresDuplicateDetection     = "RequiresDuplicateDetection"
	KeyDuplicateDetectionTimeWindow   = "DuplicateDetectionHistoryTimeWindow"
	KeyRequiresSession                = "RequiresSession"
	KeyEnableBatchedOperations        = "EnableBatchedOperations"
	KeySupportOrdering                = "SupportOrdering"
	KeyEnablePartitioning             = "EnablePartitioning"
	KeyDeadLetteringOnExpiration      = "DeadLetteringOnMessageExpiration"
	KeyDeadLetteringOnFilterEvalError = "DeadLetteringOnFilterEvaluationExceptions"
	KeyTrueFilter                     = "TrueFilter"
	KeyFalseFilter                    = "FalseFilter"
	KeySQLExpressionFilter            = "SqlExpressionFilter"
	KeyCorrelationIDFilter            = "CorrelationIdFilter"
	KeySQLRuleAction                  = "SqlRuleAction"
)

// ForQueue is the create-option table for queues.
func ForQueue() Set {
	return Set{
		{
			Key:         KeyMaxSizeInMegabytes,
			Label:       "Max Size in Megabytes",
			Description: "Maximum queue size in megabytes. Enqueues that would exceed it fail.",
			Parse:       parseWholeNumber,
		},
		{
			Key:         KeyDefaultMessageTimeToLive,
			Label:       "Default Message Time To Live",
			Description: "How long a message lives in the queue before it expires or is dead-lettered.",
			Parse:       parseISODuration,
		},
		{
			Key:         KeyLockDuration,
			Label:       "Lock Duration",
			Description: "How long a received message stays locked before it is released back.",
			Parse:       parseISODuration,
		},
		{
			Key:         KeyRequiresDuplicateDetection,
			Label:       "Requires Duplicate Detection",
			Description: "Detect duplicate messages within the detection history window. Settable only at creation time.",
			Parse:       parseBool,
		},
		{
			Key:         KeyDuplicateDetectionTimeWindow,
			Label:       "Duplicate Detection History Time Window",
			Description: "Time span during which the broker detects message duplication.",
			Parse:       parseISODuration,
		},
		{
			Key:         KeyRequiresSession,
			Label:       "Requires Session",
			Description: "Make the queue session-aware. Settable only at creation time.",
			Parse:       parseBool,
		},
		{
			Key:         KeyDeadLetteringOnExpiration,
			Label:       "Enable Dead Lettering On Message Expiration",
			Description: "Move expired messages to the dead-letter queue instead of deleting them.",
			Parse:       parseBool,
		},
	}
}

// ForTopic is the create-option table for topics.
func ForTopic() Set {
	return Set{
		{
			Key:         KeyMaxSizeInMegabytes,
			Label:       "Max Size in Megabytes",
			Description: "Maximum topic size in megabytes, counting all messages across its subscriptions.",
			Parse:       parseWholeNumber,
		},
		{
			Key:         KeyDefaultMessageTimeToLive,
			Label:       "Default Message Time To Live",
			Description: "How long a message lives in the associated subscriptions unless they set a smaller TTL.",
			Parse:       parseISODuration,
		},
		{
			Key:         KeyRequiresDuplicateDetection,
			Label:       "Requires Duplicate Detection",
			Description: "Detect duplicate messages within the detection history window. Settable only at creation time.",
			Parse:       parseBool,
		},
		{
			Key:         KeyDuplicateDetectionTimeWindow,
			Label:       "Duplicate Detection History Time Window",
			Description: "Time span during which the broker detects message duplication.",
			Parse:       parseISODuration,
		},
		{
			Key:         KeyEnableBatchedOperations,
			Label:       "Enable Batched Operations",
			Description: "Allow batched operations on the topic.",
			Parse:       parseBool,
		},
		{
			Key:         KeySupportOrdering,
			Label:       "Support Ordering",
			Description: "Whether the topic supports message ordering.",
			Parse:       parseBool,
		},
		{
			Key:         KeyEnablePartitioning,
			Label:       "Enable Partitioning",
			Description: "Whether the topic should be partitioned across brokers.",
			Parse:       parseBool,
		},
	}
}

// ForSubscription is the create-option table for subscriptions.
func ForSubscription() Set {
	return Set{
		{
			Key:         KeyLockDuration,
			Label:       "Lock Duration",
			Description: "Applied to receives that do not specify a lock duration. Settable only at creation time.",
			Parse:       parseISODuration,
		},
		{
			Key:         KeyRequiresSession,
			Label:       "Requires Session",
			Description: "Make the subscription session-aware. Settable only at creation time.",
			Parse:       parseBool,
		},
		{
			Key:         KeyDefaultMessageTimeToLive,
			Label:       "Default Message Time To Live",
			Description: "How long a message lives in the subscription before it expires or is dead-lettered.",
			Parse:       parseISODuration,
		},
		{
			Key:         KeyDeadLetteringOnExpiration,
			Label:       "Enable Dead Lettering On Message Expiration",
			Description: "Move expired messages to the subscription's dead-letter queue instead of deleting them.",
			Parse:       parseBool,
		},
		{
			Key:         KeyDeadLetteringOnFilterEvalError,
			Label:       "Enable Dead Lettering On Filter Evaluation Exceptions",
			Description: "Move messages that fail filter evaluation to the dead-letter queue instead of discarding them.",
			Parse:       parseBool,
		},
	}
}

// ForRule is the create-option table for rules. The filter options are
// mutually exclusive by convention; the broker rejects combinations.
func ForRule() Set {
	return Set{
		{
			Key:         KeyTrueFilter,
			Label:       "True Filter",
			Description: "Expression the rule evaluates as an always-true filter.",
			Parse:       parseText,
		},
		{
			Key:         KeyFalseFilter,
			Label:       "False Filter",
			Description: "Expression the rule evaluates as an always-false filter.",
			Parse:       parseText,
		},
		{
			Key:         KeySQLExpressionFilter,
			Label:       "Sql Expression Filter",
			Description: "SQL92 expression evaluated against each message; must evaluate to true or false.",
			Parse:       parseText,
		},
		{
			Key:         KeyCorrelationIDFilter,
			Label:       "Correlation Id Filter",
			Description: "Only messages whose correlation id matches this value are delivered.",
			Parse:       parseText,
		},
		{
			Key:         KeySQLRuleAction,
			Label:       "Sql Rule Action",
			Description: "SQL92 action applied to messages matched by the rule's filter.",
			Parse:       parseText,
		},
	}
}

// ForKindName returns the option table for an entity kind name, used by the
// CLI and API surfaces.
func ForKindName(kind string) (Set, bool) {
	switch kind {
	case "queue":
		return ForQueue(), true
	case "topic":
		return ForTopic(), true
	case "subscription":
		return ForSubscription(), true
	case "rule":
		return ForRule(), true
	}
	return nil, false
}
