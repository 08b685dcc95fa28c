package accountrequest

import (
	"fmt"

	"github.com/rbcalderon/attendance-management/internal/mail"
)

func approvalEmail(req *AccountRequest) mail.Message {
	return mail.Message{
		To:      req.Email,
		ToName:  req.FirstName + " " + req.LastName,
		Subject: "Your account request has been approved",
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your account request has been approved. You can now sign in with the email and password you registered with.</p><p>School ID: <strong>%s</strong></p>",
			req.FirstName, req.SchoolID),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour account request has been approved. You can now sign in with the email and password you registered with.\n\nSchool ID: %s\n",
			req.FirstName, req.SchoolID),
	}
}

func rejectionEmail(req *AccountRequest, reason string) mail.Message {
	return mail.Message{
		To:      req.Email,
		ToName:  req.FirstName + " " + req.LastName,
		Subject: "Your account request has been rejected",
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Unfortunately your account request was rejected.</p><p>Reason: %s</p><p>You may submit a new request once the issue has been addressed.</p>",
			req.FirstName, reason),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nUnfortunately your account request was rejected.\n\nReason: %s\n\nYou may submit a new request once the issue has been addressed.\n",
			req.FirstName, reason),
	}
}

func reminderEmail(req *AccountRequest) mail.Message {
	return mail.Message{
		To:      req.Email,
		ToName:  req.FirstName + " " + req.LastName,
		Subject: "Your account request is still pending",
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your account request (reference %s) is still awaiting review. No action is needed from you.</p>",
			req.FirstName, req.RequestID),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour account request (reference %s) is still awaiting review. No action is needed from you.\n",
			req.FirstName, req.RequestID),
	}
}
