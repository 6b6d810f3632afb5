package navigation

// Screen identifies one dashboard screen.
type Screen string

const (
	OnboardingCRM     Screen = "onboarding-crm"
	OnboardingPayment Screen = "onboarding-payment"
	Dashboard         Screen = "dashboard"
	GenerateLink      Screen = "generate-link"
	History           Screen = "history"
	PaymentDetail     Screen = "payment-detail"
	Settings          Screen = "settings"
	AdminDashboard    Screen = "admin-dashboard"
	AdminClientList   Screen = "admin-client-list"
	AdminClientDetail Screen = "admin-client-detail"
	AdminLogs         Screen = "admin-logs"
)

// InitialScreen is where every session starts.
const InitialScreen = Dashboard

// Edges are the navigation targets a screen exposes. Back is empty for root screens.
type Edges struct {
	Back    Screen
	Forward []Screen
}

// transitions is the immutable table of edges declared by each screen.
var transitions = map[Screen]Edges{
	OnboardingCRM:     {Forward: []Screen{OnboardingPayment}},
	OnboardingPayment: {Back: OnboardingCRM, Forward: []Screen{Dashboard}},
	Dashboard:         {Forward: []Screen{GenerateLink, History, Settings, AdminDashboard, PaymentDetail}},
	GenerateLink:      {Back: Dashboard},
	History:           {Back: Dashboard, Forward: []Screen{PaymentDetail}},
	PaymentDetail:     {Back: History},
	Settings:          {Back: Dashboard},
	AdminDashboard:    {Back: Dashboard, Forward: []Screen{AdminClientList, AdminLogs}},
	AdminClientList:   {Back: AdminDashboard, Forward: []Screen{AdminClientDetail}},
	AdminClientDetail: {Back: AdminClientList},
	AdminLogs:         {Back: AdminDashboard},
}

// Screens lists every known screen in declaration order.
func Screens() []Screen {
	return []Screen{
		OnboardingCRM, OnboardingPayment, Dashboard, GenerateLink, History, PaymentDetail,
		Settings, AdminDashboard, AdminClientList, AdminClientDetail, AdminLogs,
	}
}

// Known reports whether s is part of the screen enumeration.
func (s Screen) Known() bool {
	_, ok := transitions[s]
	return ok
}

// EdgesOf returns a copy of the edges s declares.
func EdgesOf(s Screen) Edges {
	e := transitions[s]
	return Edges{Back: e.Back, Forward: append([]Screen(nil), e.Forward...)}
}
