package domain

import "fmt"

// Condition is the closed set of comparison operators an alert rule may use.
type Condition string

const (
	ConditionGT        Condition = "gt"
	ConditionLT        Condition = "lt"
	ConditionEQ        Condition = "eq"
	ConditionChangePct Condition = "change_pct"
)

// Evaluate applies the condition to a value (and its previous value for
// ConditionChangePct) against the threshold. Returns an error for unknown
// conditions so new variants cannot be silently ignored.
func (c Condition) Evaluate(value, previous, threshold float64) (bool, error) {
	switch c {
	case ConditionGT:
		return value > threshold, nil
	case ConditionLT:
		return value < threshold, nil
	case ConditionEQ:
		return value == threshold, nil
	case ConditionChangePct:
		if previous == 0 {
			return false, nil
		}
		changePct := (value - previous) / previous * 100
		if threshold >= 0 {
			return changePct > threshold, nil
		}
		return changePct < threshold, nil
	default:
		return false, fmt.Errorf("unknown condition %q", c)
	}
}

// RuleMetric is the closed set of scored/aggregated metrics a rule targets.
type RuleMetric string

const (
	MetricOverallScore    RuleMetric = "overall_score"
	MetricSpreadBps       RuleMetric = "spread_bps"
	MetricVolume24h       RuleMetric = "volume_24h"
	MetricPriceChange24h  RuleMetric = "price_change_24h"
	MetricHolderChange24h RuleMetric = "holder_change_24h"
	MetricLiquidity1Pct   RuleMetric = "liquidity_1pct"
	MetricActiveExchanges RuleMetric = "active_exchanges"
)

// Severity ranks alerts for downstream routing.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertRule describes one threshold check evaluated each scoring cycle.
type AlertRule struct {
	RuleID     string
	Name       string
	Metric     RuleMetric
	Condition  Condition
	Threshold  float64
	Severity   Severity
	CooldownMs int64 // minimum gap between alerts for the same (rule, token)
	IsActive   bool
}

// Alert is one immutable fired alert.
// Natural key: AlertID (uuid); deduplicated per (RuleID, TokenSymbol) by the
// rule's cooldown window.
type Alert struct {
	AlertID     string
	RuleID      string
	TokenSymbol string
	TimestampMs int64
	Metric      RuleMetric
	Value       float64
	Message     string
	Severity    Severity
}
