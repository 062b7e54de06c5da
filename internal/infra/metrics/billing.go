package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		tarifStartsTotal,
		tarifStopsTotal,
		tarifChangesTotal,
		renewalChargesTotal,
		stopSettlementAmount,
		servicesActive,
	)
}

var (
	tarifStartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_tarif_starts_total",
			Help: "Total number of tarifs started on services.",
		},
	)

	tarifStopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_tarif_stops_total",
			Help: "Total number of tarifs stopped on services.",
		},
	)

	tarifChangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_tarif_changes_total",
			Help: "Total number of prorated plan switches.",
		},
	)

	renewalChargesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_renewal_charges_total",
			Help: "Total number of periodic payday charges applied.",
		},
	)

	stopSettlementAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "billing_stop_settlement_amount",
			Help:    "Settlement amounts applied on tarif stop (minor units; negative means extra debt).",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		},
	)

	servicesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "billing_services_active",
			Help: "Current number of services with an active tarif.",
		},
	)
)

func IncTarifStarted()   { tarifStartsTotal.Inc() }
func IncTarifStopped()   { tarifStopsTotal.Inc() }
func IncTarifChanged()   { tarifChangesTotal.Inc() }
func IncRenewalCharged() { renewalChargesTotal.Inc() }

func ObserveStopSettlement(amount int64) {
	stopSettlementAmount.Observe(float64(amount))
}

func SetActiveServices(n int) { servicesActive.Set(float64(n)) }
