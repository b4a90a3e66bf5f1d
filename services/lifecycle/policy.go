package lifecycle

import (
	"vastramitra/models"
)

// Command names an operation an actor may issue.
type Command string

const (
	CmdCreateAppointment     Command = "createAppointment"
	CmdTransitionAppointment Command = "transitionAppointment"
	CmdTransitionOrder       Command = "transitionOrder"
	CmdSubmitPayment         Command = "submitPayment"
	CmdVerifyPayment         Command = "verifyPayment"
	CmdListPayments          Command = "listPayments"
	CmdAddTask               Command = "addTask"
	CmdUpdateTaskStatus      Command = "updateTaskStatus"
	CmdListTasks             Command = "listTasks"
	CmdReadBookings          Command = "readBookings"
	CmdReadInbox             Command = "readInbox"
	CmdMarkNotificationRead  Command = "markNotificationRead"
	CmdSubscribe             Command = "subscribe"
	CmdReadInvoice           Command = "readInvoice"
	CmdSaveMeasurements      Command = "saveMeasurements"
	CmdReadMeasurements      Command = "readMeasurements"
	CmdListMeasurements      Command = "listMeasurements"
)

// policy lists the roles allowed to issue each command. Commands missing
// from the table are denied.
var policy = map[Command][]models.Role{
	CmdCreateAppointment:     {models.RoleCustomer},
	CmdTransitionAppointment: {models.RoleTailor},
	CmdTransitionOrder:       {models.RoleTailor},
	CmdSubmitPayment:         {models.RoleCustomer},
	CmdVerifyPayment:         {models.RoleTailor},
	CmdListPayments:          {models.RoleTailor},
	CmdAddTask:               {models.RoleTailor},
	CmdUpdateTaskStatus:      {models.RoleTailor},
	CmdListTasks:             {models.RoleTailor, models.RoleCustomer},
	CmdReadBookings:          {models.RoleTailor, models.RoleCustomer},
	CmdReadInbox:             {models.RoleTailor, models.RoleCustomer},
	CmdMarkNotificationRead:  {models.RoleTailor, models.RoleCustomer},
	CmdSubscribe:             {models.RoleTailor, models.RoleCustomer},
	CmdReadInvoice:           {models.RoleTailor, models.RoleCustomer},
	CmdSaveMeasurements:      {models.RoleCustomer},
	CmdReadMeasurements:      {models.RoleTailor, models.RoleCustomer},
	CmdListMeasurements:      {models.RoleTailor},
}

// Authorize checks actor against the policy table.
func Authorize(actor models.Actor, cmd Command) error {
	if actor.ID == "" {
		return models.PermissionDenied("%s requires an authenticated actor", cmd)
	}
	for _, r := range policy[cmd] {
		if r == actor.Role {
			return nil
		}
	}
	return models.PermissionDenied("%s is not allowed for role %q", cmd, actor.Role)
}

// authorizeOwner additionally requires a customer to own the booking.
func authorizeOwner(actor models.Actor, customerID string) error {
	if actor.Role == models.RoleCustomer && actor.ID != customerID {
		return models.PermissionDenied("booking belongs to another customer")
	}
	return nil
}
