package conversation

import (
	"fmt"

	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// Menu payload values. These are the only selections the engine accepts; a
// value arriving in the wrong step re-prompts instead of advancing.
const (
	cbMainMenu       = "menu_main"
	cbRolePassenger  = "role_passenger"
	cbRoleProvider   = "role_provider"
	cbRoutePrefix    = "route_"
	cbCountPrefix    = "pass_count_"
	cbConfirmPrefix  = "confirm_"
	cbProviderAdd    = "prov_add"
	cbProviderStatus = "prov_status"
	cbProviderReturn = "provider_menu_return"
	cbSaveService    = "prov_save_service"
	cbPayPrefix      = "toggle_pay_"
	cbStatusPrefix   = "toggle_stat_"
)

func mainMenu() []models.MenuItem {
	return []models.MenuItem{
		{Label: "Passenger", Value: cbRolePassenger},
		{Label: "Bus Provider", Value: cbRoleProvider},
	}
}

func providerMenu() []models.MenuItem {
	return []models.MenuItem{
		{Label: "Add New Service", Value: cbProviderAdd},
		{Label: "Delete / Status Toggle", Value: cbProviderStatus},
		{Label: "Main Menu", Value: cbMainMenu},
	}
}

func routeMenu(routes []string) []models.MenuItem {
	items := make([]models.MenuItem, 0, len(routes)+1)
	for _, r := range routes {
		items = append(items, models.MenuItem{Label: r, Value: cbRoutePrefix + r})
	}
	items = append(items, models.MenuItem{Label: "Back", Value: cbMainMenu})
	return items
}

func passengerCountMenu() []models.MenuItem {
	items := make([]models.MenuItem, 0, 7)
	for i := 1; i <= 6; i++ {
		items = append(items, models.MenuItem{
			Label: fmt.Sprintf("%d", i),
			Value: fmt.Sprintf("%s%d", cbCountPrefix, i),
		})
	}
	items = append(items, models.MenuItem{Label: "7+", Value: cbCountPrefix + "7+"})
	return items
}

func paymentMenu(selected []string) []models.MenuItem {
	mark := func(method string) string {
		for _, m := range selected {
			if m == method {
				return "[x] "
			}
		}
		return "[ ] "
	}
	return []models.MenuItem{
		{Label: mark("weekly") + "Weekly", Value: cbPayPrefix + "weekly"},
		{Label: mark("monthly") + "Monthly", Value: cbPayPrefix + "monthly"},
		{Label: "Save & Finish", Value: cbSaveService},
	}
}

func offerMenu(offers []models.Offer) []models.MenuItem {
	items := make([]models.MenuItem, 0, len(offers))
	for _, o := range offers {
		items = append(items, models.MenuItem{
			Label: fmt.Sprintf("Book: %s - %s", o.Name, o.Details),
			Value: cbConfirmPrefix + o.ID,
		})
	}
	return items
}

// statusMenu is always rebuilt from the current service list, never from a
// previously rendered view.
func statusMenu(services []models.Service) []models.MenuItem {
	items := make([]models.MenuItem, 0, len(services)+1)
	for _, svc := range services {
		state := "ACTIVE"
		if svc.Status != models.StatusActive {
			state = "UNAVAILABLE"
		}
		items = append(items, models.MenuItem{
			Label: fmt.Sprintf("%s - %s (%s)", svc.ServiceName, svc.Route, state),
			Value: cbStatusPrefix + svc.ID,
		})
	}
	items = append(items, models.MenuItem{Label: "Back to Provider Menu", Value: cbProviderReturn})
	return items
}

func newSearchMenu() []models.MenuItem {
	return []models.MenuItem{{Label: "New Search", Value: cbMainMenu}}
}
