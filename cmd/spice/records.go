package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-health/internal/cli"
	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/model"
	"github.com/Veraticus/spice-health/internal/service"
)

// withStore opens storage, runs fn, and closes storage again.
func withStore(cmd *cobra.Command, fn func(store service.Storage) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)
	return fn(store)
}

func printSuccess(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(format, args...))) //nolint:forbidigo // User-facing output
}

func userFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "User ID")
	_ = cmd.MarkFlagRequired("user")
}

// optionalFloat returns a pointer to the flag value when the flag was given.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage user profiles",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Create or update a user profile",
		Long: `Record what the user told us about themselves.

--income is the monthly take-home used when no income transactions exist.
--household shapes the emergency buffer target: single, dual_income,
single_income, self_employed or retired.
--no-debt confirms the user carries no debt at all.`,
		RunE: runProfileSet,
	}
	userFlag(set)
	set.Flags().String("name", "", "Display name")
	set.Flags().Float64("income", 0, "Monthly income")
	set.Flags().String("household", "", "Household type")
	set.Flags().Bool("no-debt", false, "Confirm the user has no debt")

	cmd.AddCommand(set)
	return cmd
}

func runProfileSet(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	household, _ := cmd.Flags().GetString("household")
	noDebt, _ := cmd.Flags().GetBool("no-debt")

	return withStore(cmd, func(store service.Storage) error {
		profile, err := store.GetProfile(cmd.Context(), userID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			profile = &model.UserProfile{UserID: userID}
		case err != nil:
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if cmd.Flags().Changed("name") {
			profile.Name = name
		}
		if income := optionalFloat(cmd, "income"); income != nil {
			profile.MonthlyIncome = income
		}
		if cmd.Flags().Changed("household") {
			profile.HouseholdType = model.HouseholdType(household)
		}
		if cmd.Flags().Changed("no-debt") {
			profile.NoDebtConfirmed = noDebt
		}

		if err := store.SaveProfile(cmd.Context(), profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		printSuccess(cmd, "Saved profile for %s", userID)
		return nil
	})
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank account balances",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Create or update an account balance",
		RunE:  runAccountSet,
	}
	userFlag(set)
	set.Flags().String("id", "", "Account ID (default: new ID)")
	set.Flags().String("name", "", "Account name")
	set.Flags().String("institution", "", "Bank or institution")
	set.Flags().String("type", string(model.AccountChecking), "checking, savings, credit, investment, loan or other")
	set.Flags().Float64("balance", 0, "Current balance")

	cmd.AddCommand(set)
	return cmd
}

func runAccountSet(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	institution, _ := cmd.Flags().GetString("institution")
	accountType, _ := cmd.Flags().GetString("type")
	balance, _ := cmd.Flags().GetFloat64("balance")
	if id == "" {
		id = uuid.NewString()
	}

	account := &model.Account{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Institution: institution,
		Type:        model.AccountType(accountType),
		Balance:     balance,
		UpdatedAt:   time.Now(),
	}
	return withStore(cmd, func(store service.Storage) error {
		if err := store.SaveAccount(cmd.Context(), account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		printSuccess(cmd, "Saved account %s (%s)", account.ID, account.Type)
		return nil
	})
}

func debtsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debts",
		Short: "Manage debts and debt payments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show debts and how each is weighed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, _ := cmd.Flags().GetString("user")
			return withStore(cmd, func(store service.Storage) error {
				return printDebts(cmd, store, userID)
			})
		},
	}
	userFlag(list)

	add := &cobra.Command{
		Use:   "add",
		Short: "Add or update a debt",
		Long: `Add a debt. Types: ` + debtTypeList() + `.

Monthly and minimum payments are optional. When neither is known the
payment is estimated from the balance and the debt type.`,
		RunE: runDebtAdd,
	}
	userFlag(add)
	add.Flags().String("id", "", "Debt ID (default: new ID)")
	add.Flags().String("name", "", "Debt name")
	add.Flags().String("type", string(model.DebtOther), "Debt type")
	add.Flags().Float64("balance", 0, "Current balance")
	add.Flags().Float64("apr", 0, "Annual percentage rate")
	add.Flags().Float64("payment", 0, "Monthly payment")
	add.Flags().Float64("minimum", 0, "Minimum payment")
	add.Flags().Int("term", 0, "Original term in months")
	add.Flags().Bool("collections", false, "Debt is in collections")
	_ = add.MarkFlagRequired("name")

	pay := &cobra.Command{
		Use:   "pay",
		Short: "Record a payment toward a debt",
		RunE:  runDebtPay,
	}
	userFlag(pay)
	pay.Flags().String("debt", "", "Debt ID")
	pay.Flags().Float64("amount", 0, "Amount paid")
	pay.Flags().String("date", "", "Payment date, YYYY-MM-DD (default: today)")
	_ = pay.MarkFlagRequired("debt")

	cmd.AddCommand(list, add, pay)
	return cmd
}

func debtTypeList() string {
	names := make([]string, 0, len(model.DebtTypes))
	for _, t := range model.DebtTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func runDebtAdd(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	debtType, _ := cmd.Flags().GetString("type")
	balance, _ := cmd.Flags().GetFloat64("balance")
	apr, _ := cmd.Flags().GetFloat64("apr")
	collections, _ := cmd.Flags().GetBool("collections")
	if id == "" {
		id = uuid.NewString()
	}

	debt := &model.Debt{
		ID:             id,
		UserID:         userID,
		Name:           name,
		Type:           model.DebtType(debtType),
		CurrentBalance: balance,
		APR:            apr,
		MonthlyPayment: optionalFloat(cmd, "payment"),
		MinimumPayment: optionalFloat(cmd, "minimum"),
		InCollections:  collections,
	}
	if cmd.Flags().Changed("term") {
		term, _ := cmd.Flags().GetInt("term")
		debt.OriginationTermMonths = &term
	}

	return withStore(cmd, func(store service.Storage) error {
		if err := store.SaveDebt(cmd.Context(), debt); err != nil {
			return fmt.Errorf("failed to save debt: %w", err)
		}
		normalized := health.Normalize(*debt)
		printSuccess(cmd, "Saved debt %s (%s, $%.2f/month from %s)", debt.ID, normalized.Type, normalized.MonthlyPayment, normalized.PaymentSource)
		return nil
	})
}

func runDebtPay(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	debtID, _ := cmd.Flags().GetString("debt")
	amount, _ := cmd.Flags().GetFloat64("amount")
	dateFlag, _ := cmd.Flags().GetString("date")
	paidAt, err := parseDate(dateFlag)
	if err != nil {
		return err
	}

	payment := &model.DebtPayment{
		ID:     uuid.NewString(),
		DebtID: debtID,
		UserID: userID,
		Amount: amount,
		PaidAt: paidAt,
	}
	return withStore(cmd, func(store service.Storage) error {
		if err := store.SaveDebtPayment(cmd.Context(), payment); err != nil {
			return fmt.Errorf("failed to save debt payment: %w", err)
		}
		printSuccess(cmd, "Recorded $%.2f toward %s", amount, debtID)
		return nil
	})
}

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Record bill payments",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record one bill cycle",
		Long: `Record how a bill was paid. Statuses: on_time, late_1_30, late_31_60,
late_61_90, late_91_120, late_120_plus, missed.`,
		RunE: runBillAdd,
	}
	userFlag(add)
	add.Flags().String("name", "", "Bill name")
	add.Flags().Float64("amount", 0, "Amount due")
	add.Flags().String("due", "", "Due date, YYYY-MM-DD (default: today)")
	add.Flags().String("paid", "", "Date paid, YYYY-MM-DD")
	add.Flags().String("status", string(model.BillOnTime), "Payment status")

	cmd.AddCommand(add)
	return cmd
}

func runBillAdd(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	amount, _ := cmd.Flags().GetFloat64("amount")
	dueFlag, _ := cmd.Flags().GetString("due")
	paidFlag, _ := cmd.Flags().GetString("paid")
	status, _ := cmd.Flags().GetString("status")

	due, err := parseDate(dueFlag)
	if err != nil {
		return err
	}
	bill := &model.BillPayment{
		ID:      uuid.NewString(),
		UserID:  userID,
		Name:    name,
		Amount:  amount,
		DueDate: due,
		Status:  model.BillStatus(status),
	}
	if paidFlag != "" {
		paid, err := parseDate(paidFlag)
		if err != nil {
			return err
		}
		bill.PaidDate = &paid
	}

	return withStore(cmd, func(store service.Storage) error {
		if err := store.SaveBillPayment(cmd.Context(), bill); err != nil {
			return fmt.Errorf("failed to save bill payment: %w", err)
		}
		printSuccess(cmd, "Recorded %s bill due %s", bill.Status, due.Format(dateLayout))
		return nil
	})
}

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage monthly budgets",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Set the budget for a category",
		Long: `Set how much the user plans to spend in a category for a month.
Spending is matched against expense transactions with the same category.`,
		RunE: runBudgetSet,
	}
	userFlag(set)
	set.Flags().String("category", "", "Spending category")
	set.Flags().Float64("amount", 0, "Budgeted amount")
	set.Flags().String("month", "", "Month, YYYY-MM (default: this month)")
	_ = set.MarkFlagRequired("category")

	cmd.AddCommand(set)
	return cmd
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	category, _ := cmd.Flags().GetString("category")
	amount, _ := cmd.Flags().GetFloat64("amount")
	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		month = model.BudgetMonth(time.Now())
	}

	budget := &model.Budget{
		UserID:   userID,
		Category: category,
		Month:    month,
		Budgeted: amount,
	}
	return withStore(cmd, func(store service.Storage) error {
		if err := store.SaveBudget(cmd.Context(), budget); err != nil {
			return fmt.Errorf("failed to save budget: %w", err)
		}
		printSuccess(cmd, "Budgeted $%.2f for %s in %s", amount, category, month)
		return nil
	})
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Create or update a savings goal",
		Long: `Create or update a savings goal. Emergency, general, custom and hsa
goals count toward the emergency buffer.`,
		RunE: runGoalSet,
	}
	userFlag(set)
	set.Flags().String("id", "", "Goal ID (default: new ID)")
	set.Flags().String("name", "", "Goal name")
	set.Flags().String("type", string(model.GoalEmergency), "Goal type")
	set.Flags().Float64("target", 0, "Target amount")
	set.Flags().Float64("current", 0, "Amount saved so far")

	cmd.AddCommand(set)
	return cmd
}

func runGoalSet(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	goalType, _ := cmd.Flags().GetString("type")
	target, _ := cmd.Flags().GetFloat64("target")
	current, _ := cmd.Flags().GetFloat64("current")
	if id == "" {
		id = uuid.NewString()
	}

	goal := &model.SavingsGoal{
		ID:            id,
		UserID:        userID,
		Name:          name,
		Type:          model.GoalType(goalType),
		TargetAmount:  target,
		CurrentAmount: current,
	}
	return withStore(cmd, func(store service.Storage) error {
		if err := store.SaveSavingsGoal(cmd.Context(), goal); err != nil {
			return fmt.Errorf("failed to save savings goal: %w", err)
		}
		printSuccess(cmd, "Saved goal %s", goal.ID)
		return nil
	})
}

func contributionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contributions",
		Short: "Record wealth-building contributions",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a contribution",
		Long: `Record money moved toward wealth. Kinds: cash_savings, retirement_401k,
ira, investments, hsa.`,
		RunE: runContributionAdd,
	}
	userFlag(add)
	add.Flags().String("kind", string(model.ContributionCashSavings), "Contribution kind")
	add.Flags().Float64("amount", 0, "Amount contributed")
	add.Flags().String("date", "", "Contribution date, YYYY-MM-DD (default: today)")

	cmd.AddCommand(add)
	return cmd
}

func runContributionAdd(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	kind, _ := cmd.Flags().GetString("kind")
	amount, _ := cmd.Flags().GetFloat64("amount")
	dateFlag, _ := cmd.Flags().GetString("date")
	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}

	contribution := &model.Contribution{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   model.ContributionKind(kind),
		Amount: amount,
		Date:   date,
	}
	return withStore(cmd, func(store service.Storage) error {
		if err := store.SaveContribution(cmd.Context(), contribution); err != nil {
			return fmt.Errorf("failed to save contribution: %w", err)
		}
		printSuccess(cmd, "Recorded $%.2f to %s", amount, kind)
		return nil
	})
}
