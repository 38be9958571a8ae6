package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/probablyup/spectrum/internal/config"
	"github.com/probablyup/spectrum/internal/queue"
	channelrepo "github.com/probablyup/spectrum/internal/repository/channel"
	"github.com/probablyup/spectrum/internal/service"
)

// openChannelRepository loads configuration and connects the repository
func openChannelRepository(ctx context.Context) (channelrepo.Repository, *pgxpool.Pool, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return channelrepo.NewRepository(dbPool), dbPool, nil
}

// printJSON renders a result as indented JSON
func printJSON(v any) error {
	result, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Println(string(result))
	return nil
}

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Community channel operations",
	Long:  `Operations for managing a community's channels.`,
}

// channelListCmd lists the live channels of a community
var channelListCmd = &cobra.Command{
	Use:   "list [COMMUNITY_ID]",
	Short: "List a community's channels",
	Long:  `List all live channels in a community.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repo, dbPool, err := openChannelRepository(ctx)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		channels, err := repo.GetByCommunity(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}

		if len(channels) == 0 {
			fmt.Println("No channels found in this community.")
			return nil
		}

		return printJSON(channels)
	},
}

// channelGetCmd fetches a channel by slug within a community slug
var channelGetCmd = &cobra.Command{
	Use:   "get [SLUG] [COMMUNITY_SLUG]",
	Short: "Fetch a channel by slug",
	Long:  `Fetch a single channel by its slug and its community's slug.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repo, dbPool, err := openChannelRepository(ctx)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		channel, err := repo.GetBySlug(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to get channel: %w", err)
		}
		if channel == nil {
			fmt.Println("No channel found with this slug.")
			return nil
		}

		return printJSON(channel)
	},
}

// channelCreateCmd creates a channel and enqueues the notification job
var channelCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a channel",
	Long:  `Create a channel. Creating a public channel enqueues a notification job for the community's members.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		dbPool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbPool.Close()

		redisClient, err := config.NewRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		repo := channelrepo.NewRepository(dbPool)
		channelService := service.NewChannelService(repo, queue.NewRedisQueue(redisClient), logger)

		communityID, _ := cmd.Flags().GetString("community")
		name, _ := cmd.Flags().GetString("name")
		slug, _ := cmd.Flags().GetString("slug")
		description, _ := cmd.Flags().GetString("description")
		isPrivate, _ := cmd.Flags().GetBool("private")
		isDefault, _ := cmd.Flags().GetBool("default")
		userID, _ := cmd.Flags().GetString("user")

		created, err := channelService.Create(ctx, channelrepo.CreateChannelInput{
			CommunityID: communityID,
			Name:        name,
			Slug:        slug,
			Description: description,
			IsPrivate:   isPrivate,
			IsDefault:   isDefault,
		}, userID)
		if err != nil {
			return fmt.Errorf("failed to create channel: %w", err)
		}

		return printJSON(created)
	},
}

// channelEditCmd edits channel fields
var channelEditCmd = &cobra.Command{
	Use:   "edit [ID]",
	Short: "Edit a channel",
	Long:  `Edit a channel's name, slug, description or privacy. Only the flags you pass are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repo, dbPool, err := openChannelRepository(ctx)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		input := channelrepo.EditChannelInput{ID: args[0]}
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			input.Name = &name
		}
		if cmd.Flags().Changed("slug") {
			slug, _ := cmd.Flags().GetString("slug")
			input.Slug = &slug
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			input.Description = &description
		}
		if cmd.Flags().Changed("private") {
			isPrivate, _ := cmd.Flags().GetBool("private")
			input.IsPrivate = &isPrivate
		}

		channel, err := repo.Edit(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to edit channel: %w", err)
		}
		if channel == nil {
			fmt.Println("No channel found with this ID.")
			return nil
		}

		return printJSON(channel)
	},
}

// channelDeleteCmd soft-deletes a channel
var channelDeleteCmd = &cobra.Command{
	Use:   "delete [ID]",
	Short: "Delete a channel",
	Long:  `Soft-delete a channel. The record is kept but hidden from all queries and its slug is freed for reuse.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repo, dbPool, err := openChannelRepository(ctx)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		channel, err := repo.Delete(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to delete channel: %w", err)
		}
		if channel == nil {
			fmt.Println("No channel found with this ID.")
			return nil
		}

		fmt.Println("Channel deleted.")
		return printJSON(channel)
	},
}

// channelArchiveCmd archives a channel
var channelArchiveCmd = &cobra.Command{
	Use:   "archive [ID]",
	Short: "Archive a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repo, dbPool, err := openChannelRepository(ctx)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		channel, err := repo.Archive(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to archive channel: %w", err)
		}
		if channel == nil {
			fmt.Println("No channel found with this ID.")
			return nil
		}

		return printJSON(channel)
	},
}

// channelRestoreCmd restores an archived channel
var channelRestoreCmd = &cobra.Command{
	Use:   "restore [ID]",
	Short: "Restore an archived channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repo, dbPool, err := openChannelRepository(ctx)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		channel, err := repo.Restore(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to restore channel: %w", err)
		}
		if channel == nil {
			fmt.Println("No channel found with this ID.")
			return nil
		}

		return printJSON(channel)
	},
}

// channelMetaCmd shows a channel's thread and member counts
var channelMetaCmd = &cobra.Command{
	Use:   "meta [ID]",
	Short: "Show a channel's thread and member counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repo, dbPool, err := openChannelRepository(ctx)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		meta, err := repo.GetMetaData(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get channel metadata: %w", err)
		}

		return printJSON(meta)
	},
}

func init() {
	channelCreateCmd.Flags().String("community", "", "Community ID the channel belongs to")
	channelCreateCmd.Flags().String("name", "", "Channel name")
	channelCreateCmd.Flags().String("slug", "", "Channel slug, unique within the community")
	channelCreateCmd.Flags().String("description", "", "Channel description")
	channelCreateCmd.Flags().Bool("private", false, "Make the channel private")
	channelCreateCmd.Flags().Bool("default", false, "Mark the channel as the community default")
	channelCreateCmd.Flags().String("user", "", "Creating user's ID, carried in the notification job")
	channelCreateCmd.MarkFlagRequired("community")
	channelCreateCmd.MarkFlagRequired("name")
	channelCreateCmd.MarkFlagRequired("slug")

	channelEditCmd.Flags().String("name", "", "New channel name")
	channelEditCmd.Flags().String("slug", "", "New channel slug")
	channelEditCmd.Flags().String("description", "", "New channel description")
	channelEditCmd.Flags().Bool("private", false, "New privacy setting")

	channelCmd.AddCommand(channelListCmd)
	channelCmd.AddCommand(channelGetCmd)
	channelCmd.AddCommand(channelCreateCmd)
	channelCmd.AddCommand(channelEditCmd)
	channelCmd.AddCommand(channelDeleteCmd)
	channelCmd.AddCommand(channelArchiveCmd)
	channelCmd.AddCommand(channelRestoreCmd)
	channelCmd.AddCommand(channelMetaCmd)
	rootCmd.AddCommand(channelCmd)
}
