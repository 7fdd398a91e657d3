package extractor

import (
	"regexp"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// intentRule groups the patterns for one intent. Rules are evaluated against
// the lower-cased request in the order of intentPriority.
type intentRule struct {
	intent   contractx.Intent
	patterns []*regexp.Regexp
}

type domainRule struct {
	domain   contractx.Domain
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

// update is checked first so "change the name" never falls through to list or
// search; report is last because its vocabulary overlaps with status. Each
// rule keeps the French vocabulary first, then English synonyms.
var intentPriority = []intentRule{
	{
		intent: contractx.IntentUpdate,
		patterns: compileAll(
			`(?:modifie|change|met à jour|update)`,
			`(?:corrige|rectifie)`,
			`(?:édite|modification|mise à jour)`,
			`(?:modifier|changer|mettre à jour|ajuste|renomme|renommer)`,
			`\b(?:edit|modify|rename)\b`,
		),
	},
	{
		intent: contractx.IntentDelete,
		patterns: compileAll(
			`(?:supprime|efface|delete|remove)`,
			`(?:archive|désactive)`,
			`(?:elimine|élimine|enlève)`,
			`(?:supprimer|effacer|retire|retirer)`,
			`\b(?:erase)\b`,
		),
	},
	{
		intent: contractx.IntentSearch,
		patterns: compileAll(
			`(?:cherche|trouve|recherche|localise)`,
			`(?:informations? sur|détails? de)`,
			`(?:où est|qui est)`,
			`\b(?:search|find|look up|lookup|details? (?:of|about|for))\b`,
		),
	},
	{
		intent: contractx.IntentCreate,
		patterns: compileAll(
			`(?:ajoute|crée|nouveau|nouvelle)`,
			`(?:enregistre|sauvegarde)`,
			`(?:créer|ajouter|insérer)`,
			`\b(?:add|create|new|register)\b`,
		),
	},
	{
		intent: contractx.IntentList,
		patterns: compileAll(
			`(?:liste|affiche|montre|voir).*(?:clients?|employe?s?|projets?|opportunités?)`,
			`(?:tous? les?|liste de|liste des)`,
			`(?:quels? sont|qui sont)`,
			`(?:lister|énumère|répertorie)`,
			`\b(?:list|show|display)\b`,
		),
	},
	{
		intent: contractx.IntentStatus,
		patterns: compileAll(
			`(?:statut|état|progression|avancement)`,
			`(?:comment ça va|où en est)`,
			`(?:situation|point sur)`,
			`\b(?:status|progress|state)\b`,
		),
	},
	{
		intent: contractx.IntentReport,
		patterns: compileAll(
			`(?:rapport|résumé|bilan|synthèse)`,
			`(?:performance|statistiques)`,
			`(?:analyse|métrique|kpi|tableau de bord)`,
			`\b(?:report|summary|overview|stats|dashboard)\b`,
		),
	},
}

var domainRules = []domainRule{
	{
		domain: contractx.DomainCRM,
		patterns: compileAll(
			`(?:client|prospect|crm|commercial|vente|chiffre)`,
			`(?:opportunités?|deals?|contrats?|affaires?)`,
			`(?:pipeline|portefeuille commercial)`,
			`\b(?:customers?|sales|leads?)\b`,
		),
	},
	{
		domain: contractx.DomainHR,
		patterns: compileAll(
			`(?:employe?s?|salariés?|personnel|rh|ressources? humaines?)`,
			`(?:congés?|vacations?|évaluations?|formations?)`,
			`(?:équipe|staff|collaborateurs?)`,
			`(?:employés?|absence|vacances|paie|salaire|recrutement)`,
			`\b(?:employees?|leave|payroll|hr)\b`,
		),
	},
	{
		domain: contractx.DomainProjects,
		patterns: compileAll(
			`(?:projets?|tâches?|planning|développement)`,
			`(?:deadlines?|livraisons?|jalons?|milestones?)`,
			`(?:sprints?|itérations?)`,
			`(?:échéances?|budget)`,
			`\b(?:projects?|tasks?)\b`,
		),
	},
}

var opportunityPattern = regexp.MustCompile(`(?:opportunit|deals?|affaires?)`)

// operationTable maps each (domain, intent) pair to an executor operation.
var operationTable = map[contractx.Domain]map[contractx.Intent]string{
	contractx.DomainCRM: {
		contractx.IntentList:   "list_clients",
		contractx.IntentSearch: "search_client",
		contractx.IntentCreate: "create_client",
		contractx.IntentUpdate: "update_client",
		contractx.IntentDelete: "delete_client",
		contractx.IntentStatus: "status_opportunities",
		contractx.IntentReport: "report_sales",
	},
	contractx.DomainHR: {
		contractx.IntentList:   "list_employees",
		contractx.IntentSearch: "search_employee",
		contractx.IntentCreate: "create_employee",
		contractx.IntentUpdate: "update_employee",
		contractx.IntentDelete: "delete_employee",
		contractx.IntentStatus: "status_leave",
		contractx.IntentReport: "report_hr",
	},
	contractx.DomainProjects: {
		contractx.IntentList:   "list_projects",
		contractx.IntentSearch: "project_status",
		contractx.IntentCreate: "create_project",
		contractx.IntentUpdate: "update_project",
		contractx.IntentDelete: "delete_project",
		contractx.IntentStatus: "projects_progress",
		contractx.IntentReport: "report_projects",
	},
}

var opportunityOperations = map[contractx.Intent]string{
	contractx.IntentList:   "list_opportunities",
	contractx.IntentSearch: "search_opportunity",
	contractx.IntentCreate: "create_opportunity",
	contractx.IntentUpdate: "update_opportunity",
	contractx.IntentDelete: "delete_opportunity",
	contractx.IntentStatus: "status_opportunities",
	contractx.IntentReport: "status_opportunities",
}
