package crdeal

// Element names of the bureau format: a root element holds deals, each deal
// holds its monthly history entries.
const (
	elemDeal   = "crdeal"
	elemPeriod = "deallife"
)

// Deal-level attributes.
const (
	attrDealRef         = "dlref"
	attrAmount          = "dlamt"
	attrTransactionType = "dlcelcred"
	attrCurrency        = "dlcurr"
	attrCollateralType  = "dlvidobes"
	attrCollateralValue = "dlamtobes"
	attrSubjectRole     = "dlrolesub"
	attrRedemptionPlan  = "dlporpog"
	attrProvider        = "dldonor"
)

// Period-level attributes.
const (
	attrYear            = "dlyear"
	attrMonth           = "dlmonth"
	attrStartDate       = "dlds"
	attrPlannedEndDate  = "dldpf"
	attrActualEndDate   = "dldff"
	attrStatus          = "dlflstat"
	attrCurrentLimit    = "dlamtlim"
	attrPlannedPayment  = "dlamtpaym"
	attrCurrentDebt     = "dlamtcur"
	attrOverdueDebt     = "dlamtexp"
	attrDaysOverdue     = "dldayexp"
	attrPaymentMade     = "dlflpay"
	attrArrearsPresent  = "dlflbrk"
	attrCalculationDate = "dldateclc"
)

// dateLayouts are tried in order for every date attribute.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006",
}
